// Package educator implements the educator-facing side: course authoring,
// publishing, the earnings dashboard and the enrolled-students roster.
package educator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"learnhub/internal/apperrors"
	"learnhub/internal/shared"
	"learnhub/internal/store"
)

// Service wires the catalog and the enrollment ledger for educator views.
type Service struct {
	stores *store.Stores
}

// NewService creates the educator service.
func NewService(stores *store.Stores) *Service {
	return &Service{stores: stores}
}

// ============================================================================
// Dashboard
// ============================================================================

// RecentEnrollment is one row of the dashboard's latest-enrollments table.
type RecentEnrollment struct {
	StudentName  string    `json:"studentName"`
	StudentImage string    `json:"studentImage,omitempty"`
	CourseTitle  string    `json:"courseTitle"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}

// Dashboard aggregates an educator's courses, enrollments and earnings.
type Dashboard struct {
	TotalCourses      int                `json:"totalCourses"`
	TotalEnrollments  int                `json:"totalEnrollments"`
	TotalEarnings     float64            `json:"totalEarnings"`
	Courses           []shared.Course    `json:"courses"`
	LatestEnrollments []RecentEnrollment `json:"latestEnrollments"`
}

// GetDashboard builds the educator dashboard. Earnings sum the frozen
// purchase prices from the ledger, so later price changes do not rewrite
// history. The latest-enrollments table is capped at ten rows.
func (s *Service) GetDashboard(ctx context.Context, educatorID string) (*Dashboard, error) {
	courses, err := s.stores.Courses.ListByEducator(ctx, educatorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	courseIDs := make([]string, 0, len(courses))
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
		titles[c.ID] = c.Title
	}

	enrollments, err := s.stores.Enrollments.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	earnings := 0.0
	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		earnings += e.PurchasePrice
		userIDs = append(userIDs, e.UserID)
	}

	users, err := s.stores.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	sort.SliceStable(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})

	latest := make([]RecentEnrollment, 0, 10)
	for _, e := range enrollments {
		if len(latest) == 10 {
			break
		}
		row := RecentEnrollment{
			CourseTitle: titles[e.CourseID],
			EnrolledAt:  e.EnrolledAt,
		}
		if u, ok := users[e.UserID]; ok {
			row.StudentName = u.Name
			row.StudentImage = u.ImageURL
		}
		latest = append(latest, row)
	}

	return &Dashboard{
		TotalCourses:      len(courses),
		TotalEnrollments:  len(enrollments),
		TotalEarnings:     shared.Round2(earnings),
		Courses:           courses,
		LatestEnrollments: latest,
	}, nil
}

// ============================================================================
// Enrolled students roster
// ============================================================================

// StudentRow is one student/course pair in the roster. Unlike the dashboard
// table it includes the student's email; it is only served to the educator
// who owns the courses.
type StudentRow struct {
	StudentID    string     `json:"studentId"`
	StudentName  string     `json:"studentName"`
	StudentEmail string     `json:"studentEmail"`
	StudentImage string     `json:"studentImage,omitempty"`
	CourseTitle  string     `json:"courseTitle"`
	EnrolledAt   time.Time  `json:"enrolledAt"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// EnrolledStudents returns the full roster across all of the educator's
// courses, most recent enrollment first.
func (s *Service) EnrolledStudents(ctx context.Context, educatorID string) ([]StudentRow, error) {
	courses, err := s.stores.Courses.ListByEducator(ctx, educatorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	courseIDs := make([]string, 0, len(courses))
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
		titles[c.ID] = c.Title
	}

	enrollments, err := s.stores.Enrollments.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	userIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		userIDs = append(userIDs, e.UserID)
	}
	users, err := s.stores.Users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	sort.SliceStable(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})

	rows := make([]StudentRow, 0, len(enrollments))
	for _, e := range enrollments {
		row := StudentRow{
			StudentID:   e.UserID,
			CourseTitle: titles[e.CourseID],
			EnrolledAt:  e.EnrolledAt,
			Status:      e.Status,
			CompletedAt: e.CompletedAt,
		}
		if u, ok := users[e.UserID]; ok {
			row.StudentName = u.Name
			row.StudentEmail = u.Email
			row.StudentImage = u.ImageURL
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ============================================================================
// Course authoring
// ============================================================================

// LectureInput is one lecture in a course create/update payload.
type LectureInput struct {
	ID              string  `json:"lectureId"`
	Title           string  `json:"lectureTitle"`
	DurationMinutes float64 `json:"lectureDuration"`
	URL             string  `json:"lectureUrl"`
	IsPreviewFree   bool    `json:"isPreviewFree"`
	Order           int     `json:"lectureOrder"`
}

// ChapterInput is one chapter in a course create/update payload.
type ChapterInput struct {
	ID       string         `json:"chapterId"`
	Title    string         `json:"chapterTitle"`
	Order    int            `json:"chapterOrder"`
	Lectures []LectureInput `json:"chapterContent"`
}

// CourseInput is the create/update payload for a course.
type CourseInput struct {
	Title       string         `json:"courseTitle"`
	Description string         `json:"courseDescription"`
	Thumbnail   string         `json:"courseThumbnail"`
	Price       float64        `json:"coursePrice"`
	Discount    float64        `json:"discount"`
	IsPublished bool           `json:"isPublished"`
	Chapters    []ChapterInput `json:"courseContent"`
}

func validateCourseInput(in CourseInput) error {
	fields := map[string]string{}
	if len(strings.TrimSpace(in.Title)) < 3 {
		fields["courseTitle"] = "Course title must be at least 3 characters"
	}
	if strings.TrimSpace(in.Description) == "" {
		fields["courseDescription"] = "Course description is required"
	}
	if in.Price < 0 {
		fields["coursePrice"] = "Course price cannot be negative"
	}
	if in.Discount < 0 || in.Discount > 100 {
		fields["discount"] = "Discount must be between 0 and 100"
	}
	for _, ch := range in.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			fields["courseContent"] = "Every chapter needs a title"
			break
		}
		for _, l := range ch.Lectures {
			if strings.TrimSpace(l.Title) == "" {
				fields["courseContent"] = "Every lecture needs a title"
				break
			}
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid course data", fields)
	}
	return nil
}

func buildChapters(inputs []ChapterInput) []shared.Chapter {
	chapters := make([]shared.Chapter, 0, len(inputs))
	for _, ci := range inputs {
		chapter := shared.Chapter{
			ID:       ci.ID,
			Title:    strings.TrimSpace(ci.Title),
			Order:    ci.Order,
			Lectures: make([]shared.Lecture, 0, len(ci.Lectures)),
		}
		if chapter.ID == "" {
			chapter.ID = shared.GenerateChapterID()
		}
		for _, li := range ci.Lectures {
			lecture := shared.Lecture{
				ID:              li.ID,
				Title:           strings.TrimSpace(li.Title),
				DurationMinutes: li.DurationMinutes,
				URL:             li.URL,
				IsPreviewFree:   li.IsPreviewFree,
				Order:           li.Order,
			}
			if lecture.ID == "" {
				lecture.ID = shared.GenerateLectureID()
			}
			chapter.Lectures = append(chapter.Lectures, lecture)
		}
		chapters = append(chapters, chapter)
	}
	return chapters
}

// CreateCourse inserts a new course owned by educatorID. Chapter and lecture
// IDs missing from the payload are generated server-side.
func (s *Service) CreateCourse(ctx context.Context, educatorID string, in CourseInput) (*shared.Course, error) {
	if err := validateCourseInput(in); err != nil {
		return nil, err
	}

	now := time.Now()
	course := &shared.Course{
		ID:               shared.GenerateCourseID(),
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Thumbnail:        in.Thumbnail,
		Price:            in.Price,
		Discount:         in.Discount,
		IsPublished:      in.IsPublished,
		Chapters:         buildChapters(in.Chapters),
		EducatorID:       educatorID,
		EnrolledStudents: []string{},
		Ratings:          []shared.Rating{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.stores.Courses.Insert(ctx, course); err != nil {
		return nil, apperrors.Internal(err)
	}
	return course, nil
}

// UpdateCourse replaces the authored fields of a course. Only the owning
// educator (or an admin) may update it; ownership, enrollment caches and
// ratings are preserved.
func (s *Service) UpdateCourse(ctx context.Context, caller Caller, courseID string, in CourseInput) (*shared.Course, error) {
	if err := validateCourseInput(in); err != nil {
		return nil, err
	}

	course, err := s.ownedCourse(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(in.Title)
	course.Description = in.Description
	course.Thumbnail = in.Thumbnail
	course.Price = in.Price
	course.Discount = in.Discount
	course.IsPublished = in.IsPublished
	course.Chapters = buildChapters(in.Chapters)
	course.UpdatedAt = time.Now()

	if err := s.stores.Courses.Update(ctx, course); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("course not found")
		}
		return nil, apperrors.Internal(err)
	}
	return course, nil
}

// SetPublished toggles a course's visibility in the public catalog.
func (s *Service) SetPublished(ctx context.Context, caller Caller, courseID string, published bool) (*shared.Course, error) {
	course, err := s.ownedCourse(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}

	course.IsPublished = published
	course.UpdatedAt = time.Now()

	if err := s.stores.Courses.Update(ctx, course); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("course not found")
		}
		return nil, apperrors.Internal(err)
	}
	return course, nil
}

// DeleteCourse removes a course from the catalog. A course with active
// ledger entries cannot be deleted; students must unenroll first.
func (s *Service) DeleteCourse(ctx context.Context, caller Caller, courseID string) error {
	if _, err := s.ownedCourse(ctx, caller, courseID); err != nil {
		return err
	}

	count, err := s.stores.Enrollments.CountByCourse(ctx, courseID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if count > 0 {
		return apperrors.Conflict("course still has enrolled students")
	}

	if err := s.stores.Courses.Delete(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("course not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// MyCourses lists every course the educator owns, published or not.
func (s *Service) MyCourses(ctx context.Context, educatorID string) ([]shared.Course, error) {
	courses, err := s.stores.Courses.ListByEducator(ctx, educatorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return courses, nil
}

// Caller identifies who is performing an educator operation, for ownership
// checks. Admins pass every ownership check.
type Caller struct {
	UserID string
	Role   string
}

func (s *Service) ownedCourse(ctx context.Context, caller Caller, courseID string) (*shared.Course, error) {
	course, err := s.stores.Courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("course not found")
		}
		return nil, apperrors.Internal(err)
	}
	if course.EducatorID != caller.UserID && caller.Role != shared.RoleAdmin {
		return nil, apperrors.Forbidden("you do not own this course")
	}
	return course, nil
}
