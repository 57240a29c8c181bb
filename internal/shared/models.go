// ============================================================================
// internal/shared/models.go
// Data models for the MongoDB documents: users, courses, enrollments
// ============================================================================

package shared

import (
	"math"
	"time"
)

// ============================================================================
// User Models
// ============================================================================

// User represents a user account (student, educator, or admin).
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Never expose in JSON
	Role         string    `bson:"role" json:"role"`       // student, educator, admin
	ImageURL     string    `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Bio          string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Expertise    []string  `bson:"expertise,omitempty" json:"expertise,omitempty"`

	ProfileCompleted bool `bson:"profile_completed" json:"profileCompleted"`

	// Denormalized cache of the enrollment ledger. The ledger is the source
	// of truth; this list is kept in sync inside the same transaction as
	// every ledger write.
	EnrolledCourses []string `bson:"enrolled_courses" json:"enrolledCourses"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// PublicUser is the projection of a User returned by the API.
// It can never carry the password hash.
type PublicUser struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Bio              string   `json:"bio,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Expertise        []string `json:"expertise,omitempty"`
	ProfileCompleted bool     `json:"profileCompleted"`
	EnrolledCourses  []string `json:"enrolledCourses"`
}

// Public returns the API projection of the user.
func (u *User) Public() *PublicUser {
	courses := u.EnrolledCourses
	if courses == nil {
		courses = []string{}
	}
	return &PublicUser{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		ImageURL:         u.ImageURL,
		Bio:              u.Bio,
		Phone:            u.Phone,
		Expertise:        u.Expertise,
		ProfileCompleted: u.ProfileCompleted,
		EnrolledCourses:  courses,
	}
}

// ============================================================================
// Course Models
// ============================================================================

// Lecture is a single item of course content.
type Lecture struct {
	ID              string  `bson:"lecture_id" json:"lectureId"`
	Title           string  `bson:"title" json:"lectureTitle"`
	DurationMinutes float64 `bson:"duration_minutes" json:"lectureDuration"`
	URL             string  `bson:"url,omitempty" json:"lectureUrl,omitempty"`
	IsPreviewFree   bool    `bson:"is_preview_free" json:"isPreviewFree"`
	Order           int     `bson:"order" json:"lectureOrder"`
}

// Chapter groups an ordered list of lectures.
type Chapter struct {
	ID       string    `bson:"chapter_id" json:"chapterId"`
	Title    string    `bson:"title" json:"chapterTitle"`
	Order    int       `bson:"order" json:"chapterOrder"`
	Lectures []Lecture `bson:"lectures" json:"chapterContent"`
}

// Rating is one student's 1-5 rating of a course.
type Rating struct {
	UserID string `bson:"user_id" json:"userId"`
	Rating int    `bson:"rating" json:"rating"`
}

// Course represents a catalog entry owned by exactly one educator.
type Course struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"courseTitle"`
	Description string    `bson:"description" json:"courseDescription"`
	Thumbnail   string    `bson:"thumbnail,omitempty" json:"courseThumbnail,omitempty"`
	Price       float64   `bson:"price" json:"coursePrice"`
	Discount    float64   `bson:"discount" json:"discount"` // percent, 0-100
	IsPublished bool      `bson:"is_published" json:"isPublished"`
	Chapters    []Chapter `bson:"chapters" json:"courseContent"`
	EducatorID  string    `bson:"educator_id" json:"educator"`

	// Denormalized cache of the enrollment ledger, maintained transactionally
	// alongside ledger writes.
	EnrolledStudents []string `bson:"enrolled_students" json:"enrolledStudents"`

	Ratings   []Rating  `bson:"ratings" json:"courseRatings"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// EffectivePrice is the price after discount, rounded to two decimals.
// It is computed once at enrollment time and frozen into the ledger entry.
func (c *Course) EffectivePrice() float64 {
	return Round2(c.Price - (c.Discount*c.Price)/100)
}

// TotalLectures counts lectures across all chapters.
func (c *Course) TotalLectures() int {
	total := 0
	for _, ch := range c.Chapters {
		total += len(ch.Lectures)
	}
	return total
}

// HasLecture reports whether lectureID belongs to this course.
func (c *Course) HasLecture(lectureID string) bool {
	for _, ch := range c.Chapters {
		for _, l := range ch.Lectures {
			if l.ID == lectureID {
				return true
			}
		}
	}
	return false
}

// ============================================================================
// Enrollment Models (the ledger)
// ============================================================================

// Progress tracks per-lecture completion within one enrollment.
type Progress struct {
	CompletedLectures   []string `bson:"completed_lectures" json:"completedLectures"`
	LastAccessedLecture string   `bson:"last_accessed_lecture,omitempty" json:"lastAccessedLecture,omitempty"`
	PercentComplete     int      `bson:"percent_complete" json:"percentComplete"`
}

// Completed reports whether lectureID has already been marked done.
func (p *Progress) Completed(lectureID string) bool {
	for _, id := range p.CompletedLectures {
		if id == lectureID {
			return true
		}
	}
	return false
}

// Enrollment is one ledger record per (user, course) pair. The collection
// carries a unique index on (user_id, course_id); enrolling twice is
// rejected, not merged.
type Enrollment struct {
	ID            string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user_id" json:"user"`
	CourseID      string     `bson:"course_id" json:"course"`
	Status        string     `bson:"status" json:"status"` // active, completed
	Progress      Progress   `bson:"progress" json:"progress"`
	EnrolledAt    time.Time  `bson:"enrolled_at" json:"enrolledAt"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	PurchasePrice float64    `bson:"purchase_price" json:"purchasePrice"`
}

// ============================================================================
// Constants
// ============================================================================

const (
	// User roles
	RoleStudent  = "student"
	RoleEducator = "educator"
	RoleAdmin    = "admin"

	// Enrollment statuses
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// IsValidRole checks if a role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleEducator || role == RoleAdmin
}

// IsValidEnrollmentStatus checks if an enrollment status is valid.
func IsValidEnrollmentStatus(status string) bool {
	return status == StatusActive || status == StatusCompleted
}

// ============================================================================
// Numeric Helpers
// ============================================================================

// Round2 rounds to two decimal places, used for money values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PercentOf computes round(100 * done / total) capped at 100.
// A course with no lectures yields 0.
func PercentOf(done, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(done) / float64(total)))
	if pct > 100 {
		return 100
	}
	return pct
}
