// Package store defines the persistence interfaces for the credential store,
// the course catalog, and the enrollment ledger, together with their MongoDB
// implementations.
package store

import (
	"context"
	"errors"
	"time"

	"learnhub/internal/shared"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write
	// (duplicate email, duplicate (user, course) ledger entry).
	ErrDuplicate = errors.New("duplicate document")
)

// ProfileUpdate carries the mutable profile fields of a user. Nil pointers
// leave the stored value untouched.
type ProfileUpdate struct {
	Name      *string
	Bio       *string
	Phone     *string
	ImageURL  *string
	Expertise *[]string
}

// UserStore persists user records.
type UserStore interface {
	Insert(ctx context.Context, user *shared.User) error
	FindByID(ctx context.Context, id string) (*shared.User, error)
	FindByEmail(ctx context.Context, email string) (*shared.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*shared.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*shared.User, error)

	// Denormalized enrolled-courses cache, updated inside the same
	// transaction as the corresponding ledger write.
	AddEnrolledCourse(ctx context.Context, userID, courseID string) error
	RemoveEnrolledCourse(ctx context.Context, userID, courseID string) error
}

// CourseStore persists the course catalog.
type CourseStore interface {
	Insert(ctx context.Context, course *shared.Course) error
	FindByID(ctx context.Context, id string) (*shared.Course, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*shared.Course, error)
	ListPublished(ctx context.Context) ([]shared.Course, error)
	ListByEducator(ctx context.Context, educatorID string) ([]shared.Course, error)
	Update(ctx context.Context, course *shared.Course) error
	Delete(ctx context.Context, id string) error
	SetRating(ctx context.Context, courseID, userID string, rating int) error

	// Denormalized enrolled-students cache, updated inside the same
	// transaction as the corresponding ledger write.
	AddEnrolledStudent(ctx context.Context, courseID, userID string) error
	RemoveEnrolledStudent(ctx context.Context, courseID, userID string) error
}

// EnrollmentStore persists the enrollment ledger, the source of truth for
// who is enrolled in what.
type EnrollmentStore interface {
	Insert(ctx context.Context, enrollment *shared.Enrollment) error
	Find(ctx context.Context, userID, courseID string) (*shared.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]shared.Enrollment, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]shared.Enrollment, error)
	UpdateProgress(ctx context.Context, id string, progress shared.Progress) error
	Complete(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, userID, courseID string) error
	CountByCourse(ctx context.Context, courseID string) (int64, error)
}

// Transactor runs fn so that every store call made with the supplied context
// commits or rolls back as a unit.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores bundles the three stores and the transactor for injection into the
// service layer.
type Stores struct {
	Users       UserStore
	Courses     CourseStore
	Enrollments EnrollmentStore
	Tx          Transactor
}
