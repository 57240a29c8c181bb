// Package course implements catalog reads and the enrollment/progress
// service: enroll, unenroll, lecture completion, forced completion and the
// per-user enrollment listing.
package course

import (
	"context"
	"errors"
	"time"

	"learnhub/internal/apperrors"
	"learnhub/internal/shared"
	"learnhub/internal/store"
)

// Service wires the catalog store and the enrollment ledger together.
type Service struct {
	stores *store.Stores
}

// NewService creates the course/enrollment service.
func NewService(stores *store.Stores) *Service {
	return &Service{stores: stores}
}

// EnrolledCourse is one ledger entry joined with its course document, the
// shape of GET /api/courses/enrolled.
type EnrolledCourse struct {
	Course       shared.Course   `json:"course"`
	EnrollmentID string          `json:"enrollmentId"`
	Status       string          `json:"status"`
	Progress     shared.Progress `json:"progress"`
	EnrolledAt   time.Time       `json:"enrolledAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	Price        float64         `json:"purchasePrice"`
}

// ListPublished returns the browsable catalog, newest first.
func (s *Service) ListPublished(ctx context.Context) ([]shared.Course, error) {
	courses, err := s.stores.Courses.ListPublished(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return courses, nil
}

// GetCourse returns one course and whether viewerID is enrolled in it.
// Enrollment is derived from the ledger, never from the cached list fields.
// For anonymous viewers the flag is an explicit false, not omitted.
func (s *Service) GetCourse(ctx context.Context, courseID, viewerID string) (*shared.Course, bool, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	isEnrolled := false
	if viewerID != "" {
		_, err := s.stores.Enrollments.Find(ctx, viewerID, courseID)
		switch {
		case err == nil:
			isEnrolled = true
		case errors.Is(err, store.ErrNotFound):
			// not enrolled
		default:
			return nil, false, apperrors.Internal(err)
		}
	}

	return course, isEnrolled, nil
}

// Enroll creates the ledger entry with the purchase price frozen from the
// current course price and discount. The ledger insert and both denormalized
// cache updates run inside one transaction; the unique (user, course) index
// still backstops concurrent enrolls.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.stores.Enrollments.Find(ctx, userID, courseID); err == nil {
		return nil, apperrors.Conflict("already enrolled in this course")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	enrollment := &shared.Enrollment{
		ID:       shared.GenerateEnrollmentID(),
		UserID:   userID,
		CourseID: courseID,
		Status:   shared.StatusActive,
		Progress: shared.Progress{
			CompletedLectures: []string{},
			PercentComplete:   0,
		},
		EnrolledAt:    time.Now(),
		PurchasePrice: course.EffectivePrice(),
	}

	err = s.stores.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stores.Enrollments.Insert(txCtx, enrollment); err != nil {
			return err
		}
		if err := s.stores.Courses.AddEnrolledStudent(txCtx, courseID, userID); err != nil {
			return err
		}
		return s.stores.Users.AddEnrolledCourse(txCtx, userID, courseID)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.Conflict("already enrolled in this course")
		}
		return nil, apperrors.Internal(err)
	}

	return enrollment, nil
}

// Unenroll deletes the ledger entry and pulls both cache references in one
// transaction. Progress is irreversibly discarded.
func (s *Service) Unenroll(ctx context.Context, userID, courseID string) error {
	err := s.stores.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stores.Enrollments.Delete(txCtx, userID, courseID); err != nil {
			return err
		}
		if err := s.stores.Courses.RemoveEnrolledStudent(txCtx, courseID, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := s.stores.Users.RemoveEnrolledCourse(txCtx, userID, courseID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("enrollment not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// MarkLectureComplete records one lecture as done and recomputes the percent
// complete. Re-marking an already-completed lecture is a no-op, not an
// error. Reaching 100% does not change the enrollment status; completion is
// an explicit action (CompleteCourse).
func (s *Service) MarkLectureComplete(ctx context.Context, userID, courseID, lectureID string) (*shared.Enrollment, error) {
	enrollment, err := s.findEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasLecture(lectureID) {
		return nil, apperrors.NotFound("lecture not found in this course")
	}

	progress := enrollment.Progress
	if !progress.Completed(lectureID) {
		progress.CompletedLectures = append(progress.CompletedLectures, lectureID)
	}
	progress.LastAccessedLecture = lectureID
	progress.PercentComplete = shared.PercentOf(len(progress.CompletedLectures), course.TotalLectures())

	if err := s.stores.Enrollments.UpdateProgress(ctx, enrollment.ID, progress); err != nil {
		return nil, apperrors.Internal(err)
	}

	enrollment.Progress = progress
	return enrollment, nil
}

// CompleteCourse force-sets the terminal state: status=completed,
// completedAt=now, percentComplete=100, regardless of how many lectures were
// marked done. This is the explicit fast-completion path (e.g. after passing
// a quiz) and is independent of per-lecture tracking.
func (s *Service) CompleteCourse(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	enrollment, err := s.findEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.stores.Enrollments.Complete(ctx, enrollment.ID, now); err != nil {
		return nil, apperrors.Internal(err)
	}

	enrollment.Status = shared.StatusCompleted
	enrollment.CompletedAt = &now
	enrollment.Progress.PercentComplete = 100
	return enrollment, nil
}

// ListEnrolled returns the caller's ledger entries joined with their course
// documents, most recently enrolled first. Entries whose course has since
// been deleted are skipped.
func (s *Service) ListEnrolled(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	enrollments, err := s.stores.Enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses, err := s.stores.Courses.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		course, ok := courses[e.CourseID]
		if !ok {
			continue
		}
		result = append(result, EnrolledCourse{
			Course:       *course,
			EnrollmentID: e.ID,
			Status:       e.Status,
			Progress:     e.Progress,
			EnrolledAt:   e.EnrolledAt,
			CompletedAt:  e.CompletedAt,
			Price:        e.PurchasePrice,
		})
	}
	return result, nil
}

// RateCourse records a 1-5 rating from an enrolled student; a second rating
// from the same user replaces the first.
func (s *Service) RateCourse(ctx context.Context, userID, courseID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("invalid rating", map[string]string{
			"rating": "Rating must be between 1 and 5",
		})
	}

	if _, err := s.findEnrollment(ctx, userID, courseID); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Kind == apperrors.KindNotFound {
			return apperrors.Forbidden("only enrolled students can rate a course")
		}
		return err
	}

	if err := s.stores.Courses.SetRating(ctx, courseID, userID, rating); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("course not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) findCourse(ctx context.Context, courseID string) (*shared.Course, error) {
	course, err := s.stores.Courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("course not found")
		}
		return nil, apperrors.Internal(err)
	}
	return course, nil
}

func (s *Service) findEnrollment(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	enrollment, err := s.stores.Enrollments.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("enrollment not found")
		}
		return nil, apperrors.Internal(err)
	}
	return enrollment, nil
}
