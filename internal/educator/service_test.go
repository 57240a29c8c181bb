package educator

import (
	"context"
	"fmt"
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

func seedUser(t *testing.T, stores *store.Stores, id, name, role string) {
	t.Helper()
	require.NoError(t, stores.Users.Insert(context.Background(), &shared.User{
		ID:        id,
		Name:      name,
		Email:     id + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
	}))
}

func seedCourse(t *testing.T, stores *store.Stores, id, educatorID string, price float64) {
	t.Helper()
	require.NoError(t, stores.Courses.Insert(context.Background(), &shared.Course{
		ID:          id,
		Title:       "Course " + id,
		Description: "test course",
		Price:       price,
		IsPublished: true,
		EducatorID:  educatorID,
		CreatedAt:   time.Now(),
	}))
}

func seedEnrollment(t *testing.T, stores *store.Stores, userID, courseID string, price float64, at time.Time) {
	t.Helper()
	require.NoError(t, stores.Enrollments.Insert(context.Background(), &shared.Enrollment{
		ID:            shared.GenerateEnrollmentID(),
		UserID:        userID,
		CourseID:      courseID,
		Status:        shared.StatusActive,
		EnrolledAt:    at,
		PurchasePrice: price,
	}))
}

func TestDashboardScopedToEducator(t *testing.T) {
	svc, stores := newTestService(t)
	seedUser(t, stores, "usr_ed1", "Grace", shared.RoleEducator)
	seedUser(t, stores, "usr_ed2", "Other", shared.RoleEducator)
	seedUser(t, stores, "usr_s1", "Miguel", shared.RoleStudent)

	seedCourse(t, stores, "crs_mine", "usr_ed1", 50)
	seedCourse(t, stores, "crs_theirs", "usr_ed2", 50)
	seedEnrollment(t, stores, "usr_s1", "crs_mine", 50, time.Now())
	seedEnrollment(t, stores, "usr_s1", "crs_theirs", 50, time.Now())

	dash, err := svc.GetDashboard(context.Background(), "usr_ed1")
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalCourses)
	assert.Equal(t, 1, dash.TotalEnrollments)
	assert.InDelta(t, 50, dash.TotalEarnings, 0.001)
	require.Len(t, dash.LatestEnrollments, 1)
	assert.Equal(t, "Miguel", dash.LatestEnrollments[0].StudentName)
	assert.Equal(t, "Course crs_mine", dash.LatestEnrollments[0].CourseTitle)
}

func TestDashboardEarningsUseFrozenPrices(t *testing.T) {
	svc, stores := newTestService(t)
	seedUser(t, stores, "usr_ed1", "Grace", shared.RoleEducator)
	seedUser(t, stores, "usr_s1", "Miguel", shared.RoleStudent)
	seedUser(t, stores, "usr_s2", "Priya", shared.RoleStudent)

	seedCourse(t, stores, "crs_1", "usr_ed1", 500)
	// Both bought before the price went up.
	seedEnrollment(t, stores, "usr_s1", "crs_1", 19.99, time.Now())
	seedEnrollment(t, stores, "usr_s2", "crs_1", 13.39, time.Now())

	dash, err := svc.GetDashboard(context.Background(), "usr_ed1")
	require.NoError(t, err)
	assert.InDelta(t, 33.38, dash.TotalEarnings, 0.001)
}

func TestDashboardLatestEnrollmentsCappedAtTen(t *testing.T) {
	svc, stores := newTestService(t)
	seedUser(t, stores, "usr_ed1", "Grace", shared.RoleEducator)
	seedCourse(t, stores, "crs_1", "usr_ed1", 10)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("usr_s%d", i)
		seedUser(t, stores, id, fmt.Sprintf("Student %d", i), shared.RoleStudent)
		seedEnrollment(t, stores, id, "crs_1", 10, base.Add(time.Duration(i)*time.Minute))
	}

	dash, err := svc.GetDashboard(context.Background(), "usr_ed1")
	require.NoError(t, err)
	assert.Equal(t, 15, dash.TotalEnrollments)
	require.Len(t, dash.LatestEnrollments, 10)
	assert.Equal(t, "Student 14", dash.LatestEnrollments[0].StudentName,
		"most recent enrollment first")
}

func TestEnrolledStudentsIncludesEmail(t *testing.T) {
	svc, stores := newTestService(t)
	seedUser(t, stores, "usr_ed1", "Grace", shared.RoleEducator)
	seedUser(t, stores, "usr_s1", "Miguel", shared.RoleStudent)
	seedCourse(t, stores, "crs_1", "usr_ed1", 25)
	seedEnrollment(t, stores, "usr_s1", "crs_1", 25, time.Now())

	rows, err := svc.EnrolledStudents(context.Background(), "usr_ed1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "usr_s1", rows[0].StudentID)
	assert.Equal(t, "usr_s1@example.com", rows[0].StudentEmail)
	assert.Equal(t, shared.StatusActive, rows[0].Status)
}

func TestCreateCourseGeneratesIDs(t *testing.T) {
	svc, _ := newTestService(t)

	course, err := svc.CreateCourse(context.Background(), "usr_ed1", CourseInput{
		Title:       "New Course",
		Description: "fresh",
		Price:       10,
		Chapters: []ChapterInput{
			{
				Title: "Intro",
				Lectures: []LectureInput{
					{Title: "Welcome"},
					{ID: "lec_keep", Title: "Setup"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "usr_ed1", course.EducatorID)
	require.Len(t, course.Chapters, 1)
	assert.NotEmpty(t, course.Chapters[0].ID)
	assert.NotEmpty(t, course.Chapters[0].Lectures[0].ID)
	assert.Equal(t, "lec_keep", course.Chapters[0].Lectures[1].ID,
		"client-supplied IDs survive")
	assert.NotNil(t, course.EnrolledStudents)
	assert.NotNil(t, course.Ratings)
}

func TestCreateCourseValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateCourse(context.Background(), "usr_ed1", CourseInput{
		Title:    "ab",
		Price:    -5,
		Discount: 120,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	fields := apperrors.FieldsOf(err)
	assert.Contains(t, fields, "courseTitle")
	assert.Contains(t, fields, "courseDescription")
	assert.Contains(t, fields, "coursePrice")
	assert.Contains(t, fields, "discount")
}

func TestUpdateCourseOwnership(t *testing.T) {
	svc, stores := newTestService(t)
	seedCourse(t, stores, "crs_1", "usr_ed1", 25)

	in := CourseInput{Title: "Renamed Course", Description: "still mine", Price: 30}

	_, err := svc.UpdateCourse(context.Background(),
		Caller{UserID: "usr_ed2", Role: shared.RoleEducator}, "crs_1", in)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	updated, err := svc.UpdateCourse(context.Background(),
		Caller{UserID: "usr_ed1", Role: shared.RoleEducator}, "crs_1", in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Course", updated.Title)
	assert.Equal(t, "usr_ed1", updated.EducatorID, "ownership survives updates")

	// Admins bypass the ownership check.
	_, err = svc.UpdateCourse(context.Background(),
		Caller{UserID: "usr_admin", Role: shared.RoleAdmin}, "crs_1", in)
	require.NoError(t, err)
}

func TestSetPublished(t *testing.T) {
	svc, stores := newTestService(t)
	seedCourse(t, stores, "crs_1", "usr_ed1", 25)

	caller := Caller{UserID: "usr_ed1", Role: shared.RoleEducator}
	course, err := svc.SetPublished(context.Background(), caller, "crs_1", false)
	require.NoError(t, err)
	assert.False(t, course.IsPublished)

	course, err = svc.SetPublished(context.Background(), caller, "crs_1", true)
	require.NoError(t, err)
	assert.True(t, course.IsPublished)
}

func TestDeleteCourseBlockedByEnrollments(t *testing.T) {
	svc, stores := newTestService(t)
	seedUser(t, stores, "usr_s1", "Miguel", shared.RoleStudent)
	seedCourse(t, stores, "crs_1", "usr_ed1", 25)
	seedEnrollment(t, stores, "usr_s1", "crs_1", 25, time.Now())

	caller := Caller{UserID: "usr_ed1", Role: shared.RoleEducator}
	err := svc.DeleteCourse(context.Background(), caller, "crs_1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// Last student leaves, delete goes through.
	require.NoError(t, stores.Enrollments.Delete(context.Background(), "usr_s1", "crs_1"))
	require.NoError(t, svc.DeleteCourse(context.Background(), caller, "crs_1"))

	_, err = stores.Courses.FindByID(context.Background(), "crs_1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
