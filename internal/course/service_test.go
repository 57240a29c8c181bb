package course

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/apperrors"
	"learnhub/internal/shared"
	"learnhub/internal/store"
	"learnhub/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *store.Stores) {
	t.Helper()
	stores := memory.NewStores()
	return NewService(stores), stores
}

func seedStudent(t *testing.T, stores *store.Stores, id string) *shared.User {
	t.Helper()
	user := &shared.User{
		ID:              id,
		Name:            "Test Student",
		Email:           id + "@example.com",
		Role:            shared.RoleStudent,
		EnrolledCourses: []string{},
		CreatedAt:       time.Now(),
	}
	require.NoError(t, stores.Users.Insert(context.Background(), user))
	return user
}

// seedCourse inserts a published course with three lectures across two
// chapters, priced 100 with a 25% discount.
func seedCourse(t *testing.T, stores *store.Stores, id string) *shared.Course {
	t.Helper()
	course := &shared.Course{
		ID:          id,
		Title:       "Test Course",
		Description: "A course for tests",
		Price:       100,
		Discount:    25,
		IsPublished: true,
		EducatorID:  "usr_educator",
		Chapters: []shared.Chapter{
			{
				ID:    "ch_1",
				Title: "Chapter One",
				Lectures: []shared.Lecture{
					{ID: "lec_1", Title: "Lecture 1"},
					{ID: "lec_2", Title: "Lecture 2"},
				},
			},
			{
				ID:       "ch_2",
				Title:    "Chapter Two",
				Lectures: []shared.Lecture{{ID: "lec_3", Title: "Lecture 3"}},
			},
		},
		EnrolledStudents: []string{},
		Ratings:          []shared.Rating{},
		CreatedAt:        time.Now(),
	}
	require.NoError(t, stores.Courses.Insert(context.Background(), course))
	return course
}

func TestEnrollFreezesPurchasePrice(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	enrollment, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	assert.InDelta(t, 75.00, enrollment.PurchasePrice, 0.001)
	assert.Equal(t, shared.StatusActive, enrollment.Status)
	assert.Equal(t, 0, enrollment.Progress.PercentComplete)

	// A later price change must not rewrite the frozen price.
	course, err := stores.Courses.FindByID(ctx, "crs_1")
	require.NoError(t, err)
	course.Price = 500
	require.NoError(t, stores.Courses.Update(ctx, course))

	stored, err := stores.Enrollments.Find(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	assert.InDelta(t, 75.00, stored.PurchasePrice, 0.001)
}

func TestEnrollUpdatesCaches(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	user, err := stores.Users.FindByID(ctx, "usr_1")
	require.NoError(t, err)
	assert.Contains(t, user.EnrolledCourses, "crs_1")

	course, err := stores.Courses.FindByID(ctx, "crs_1")
	require.NoError(t, err)
	assert.Contains(t, course.EnrolledStudents, "usr_1")
}

func TestEnrollTwiceConflicts(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, "usr_1", "crs_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	entries, err := stores.Enrollments.ListByUser(ctx, "usr_1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "ledger must hold a single entry")
}

func TestEnrollUnknownCourse(t *testing.T) {
	svc, stores := newTestService(t)
	seedStudent(t, stores, "usr_1")

	_, err := svc.Enroll(context.Background(), "usr_1", "crs_missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUnenroll(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	require.NoError(t, svc.Unenroll(ctx, "usr_1", "crs_1"))

	_, err = stores.Enrollments.Find(ctx, "usr_1", "crs_1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	user, err := stores.Users.FindByID(ctx, "usr_1")
	require.NoError(t, err)
	assert.NotContains(t, user.EnrolledCourses, "crs_1")

	course, err := stores.Courses.FindByID(ctx, "crs_1")
	require.NoError(t, err)
	assert.NotContains(t, course.EnrolledStudents, "usr_1")
}

func TestUnenrollWithoutEnrollment(t *testing.T) {
	svc, stores := newTestService(t)
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	err := svc.Unenroll(context.Background(), "usr_1", "crs_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMarkLectureCompleteProgression(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	e, err := svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_1")
	require.NoError(t, err)
	assert.Equal(t, 33, e.Progress.PercentComplete)
	assert.Equal(t, "lec_1", e.Progress.LastAccessedLecture)

	e, err = svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_2")
	require.NoError(t, err)
	assert.Equal(t, 67, e.Progress.PercentComplete)

	e, err = svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_3")
	require.NoError(t, err)
	assert.Equal(t, 100, e.Progress.PercentComplete)
	assert.Equal(t, shared.StatusActive, e.Status,
		"full progress does not complete the course by itself")
}

func TestMarkLectureCompleteIsIdempotent(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	_, err = svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_1")
	require.NoError(t, err)
	e, err := svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"lec_1"}, e.Progress.CompletedLectures)
	assert.Equal(t, 33, e.Progress.PercentComplete)
}

func TestMarkLectureCompleteUnknownLecture(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	_, err = svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_999")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMarkLectureCompleteRequiresEnrollment(t *testing.T) {
	svc, stores := newTestService(t)
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.MarkLectureComplete(context.Background(), "usr_1", "crs_1", "lec_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCompleteCourse(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	// Complete with only one of three lectures done.
	_, err = svc.MarkLectureComplete(ctx, "usr_1", "crs_1", "lec_1")
	require.NoError(t, err)

	e, err := svc.CompleteCourse(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusCompleted, e.Status)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, 100, e.Progress.PercentComplete,
		"completion overrides the lecture-derived percentage")

	stored, err := stores.Enrollments.Find(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress.PercentComplete)
}

func TestListEnrolled(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")
	seedCourse(t, stores, "crs_2")

	_, err := svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, "usr_1", "crs_2")
	require.NoError(t, err)

	enrolled, err := svc.ListEnrolled(ctx, "usr_1")
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	assert.Equal(t, "crs_2", enrolled[0].Course.ID, "newest enrollment first")
	assert.Equal(t, "crs_1", enrolled[1].Course.ID)
	assert.InDelta(t, 75.00, enrolled[0].Price, 0.001)
}

func TestGetCourseEnrollmentFlag(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	_, isEnrolled, err := svc.GetCourse(ctx, "crs_1", "")
	require.NoError(t, err)
	assert.False(t, isEnrolled, "anonymous viewer gets explicit false")

	_, isEnrolled, err = svc.GetCourse(ctx, "crs_1", "usr_1")
	require.NoError(t, err)
	assert.False(t, isEnrolled)

	_, err = svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	_, isEnrolled, err = svc.GetCourse(ctx, "crs_1", "usr_1")
	require.NoError(t, err)
	assert.True(t, isEnrolled)
}

func TestListPublishedExcludesDrafts(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedCourse(t, stores, "crs_1")

	draft := &shared.Course{
		ID:          "crs_draft",
		Title:       "Draft",
		IsPublished: false,
		EducatorID:  "usr_educator",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, stores.Courses.Insert(ctx, draft))

	courses, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "crs_1", courses[0].ID)
}

func TestRateCourse(t *testing.T) {
	svc, stores := newTestService(t)
	ctx := context.Background()
	seedStudent(t, stores, "usr_1")
	seedCourse(t, stores, "crs_1")

	err := svc.RateCourse(ctx, "usr_1", "crs_1", 4)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden),
		"only enrolled students may rate")

	_, err = svc.Enroll(ctx, "usr_1", "crs_1")
	require.NoError(t, err)

	require.NoError(t, svc.RateCourse(ctx, "usr_1", "crs_1", 4))

	// Re-rating replaces, not appends.
	require.NoError(t, svc.RateCourse(ctx, "usr_1", "crs_1", 5))
	course, err := stores.Courses.FindByID(ctx, "crs_1")
	require.NoError(t, err)
	require.Len(t, course.Ratings, 1)
	assert.Equal(t, 5, course.Ratings[0].Rating)

	err = svc.RateCourse(ctx, "usr_1", "crs_1", 6)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
