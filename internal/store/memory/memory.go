// Package memory provides in-memory implementations of the store interfaces.
// They back the test suite and mirror the MongoDB semantics: sentinel errors,
// uniqueness constraints, and newest-first listing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"learnhub/internal/shared"
	"learnhub/internal/store"
)

// NewStores builds an empty in-memory store bundle.
func NewStores() *store.Stores {
	db := &database{
		users:       map[string]*shared.User{},
		courses:     map[string]*shared.Course{},
		enrollments: map[string]*enrollmentRecord{},
	}
	return &store.Stores{
		Users:       &userStore{db: db},
		Courses:     &courseStore{db: db},
		Enrollments: &enrollmentStore{db: db},
		Tx:          &transactor{db: db},
	}
}

// enrollmentRecord tags each ledger entry with an insertion sequence so that
// newest-first ordering stays deterministic when timestamps collide.
type enrollmentRecord struct {
	entry *shared.Enrollment
	seq   int64
}

type database struct {
	mu          sync.Mutex
	users       map[string]*shared.User
	courses     map[string]*shared.Course
	enrollments map[string]*enrollmentRecord
	seq         int64
}

// transactor runs the callback directly. Each store method takes the
// database lock itself, which is enough isolation for the test setup; there
// is no rollback.
type transactor struct {
	db *database
}

func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func copyUser(u *shared.User) *shared.User {
	cp := *u
	cp.Expertise = append([]string(nil), u.Expertise...)
	cp.EnrolledCourses = append([]string(nil), u.EnrolledCourses...)
	return &cp
}

func copyCourse(c *shared.Course) *shared.Course {
	cp := *c
	cp.Chapters = append([]shared.Chapter(nil), c.Chapters...)
	for i := range cp.Chapters {
		cp.Chapters[i].Lectures = append([]shared.Lecture(nil), c.Chapters[i].Lectures...)
	}
	cp.EnrolledStudents = append([]string(nil), c.EnrolledStudents...)
	cp.Ratings = append([]shared.Rating(nil), c.Ratings...)
	return &cp
}

func copyEnrollment(e *shared.Enrollment) *shared.Enrollment {
	cp := *e
	cp.Progress.CompletedLectures = append([]string(nil), e.Progress.CompletedLectures...)
	if e.CompletedAt != nil {
		at := *e.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

// ============================================================================
// Users
// ============================================================================

type userStore struct {
	db *database
}

func (s *userStore) Insert(ctx context.Context, user *shared.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.db.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	s.db.users[user.ID] = copyUser(user)
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id string) (*shared.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*shared.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, user := range s.db.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) FindByIDs(ctx context.Context, ids []string) (map[string]*shared.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	result := make(map[string]*shared.User, len(ids))
	for _, id := range ids {
		if user, ok := s.db.users[id]; ok {
			result[id] = copyUser(user)
		}
	}
	return result, nil
}

func (s *userStore) UpdateProfile(ctx context.Context, id string, update store.ProfileUpdate) (*shared.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.ImageURL != nil {
		user.ImageURL = *update.ImageURL
	}
	if update.Expertise != nil {
		user.Expertise = append([]string(nil), (*update.Expertise)...)
	}
	user.ProfileCompleted = true
	user.UpdatedAt = time.Now()
	return copyUser(user), nil
}

func (s *userStore) AddEnrolledCourse(ctx context.Context, userID, courseID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	for _, id := range user.EnrolledCourses {
		if id == courseID {
			return nil
		}
	}
	user.EnrolledCourses = append(user.EnrolledCourses, courseID)
	return nil
}

func (s *userStore) RemoveEnrolledCourse(ctx context.Context, userID, courseID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	kept := user.EnrolledCourses[:0]
	for _, id := range user.EnrolledCourses {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	user.EnrolledCourses = kept
	return nil
}

// ============================================================================
// Courses
// ============================================================================

type courseStore struct {
	db *database
}

func (s *courseStore) Insert(ctx context.Context, course *shared.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[course.ID]; ok {
		return store.ErrDuplicate
	}
	s.db.courses[course.ID] = copyCourse(course)
	return nil
}

func (s *courseStore) FindByID(ctx context.Context, id string) (*shared.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	course, ok := s.db.courses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyCourse(course), nil
}

func (s *courseStore) FindByIDs(ctx context.Context, ids []string) (map[string]*shared.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	result := make(map[string]*shared.Course, len(ids))
	for _, id := range ids {
		if course, ok := s.db.courses[id]; ok {
			result[id] = copyCourse(course)
		}
	}
	return result, nil
}

func (s *courseStore) ListPublished(ctx context.Context) ([]shared.Course, error) {
	return s.list(func(c *shared.Course) bool { return c.IsPublished })
}

func (s *courseStore) ListByEducator(ctx context.Context, educatorID string) ([]shared.Course, error) {
	return s.list(func(c *shared.Course) bool { return c.EducatorID == educatorID })
}

func (s *courseStore) list(match func(*shared.Course) bool) ([]shared.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	courses := []shared.Course{}
	for _, course := range s.db.courses {
		if match(course) {
			courses = append(courses, *copyCourse(course))
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})
	return courses, nil
}

func (s *courseStore) Update(ctx context.Context, course *shared.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[course.ID]; !ok {
		return store.ErrNotFound
	}
	course.UpdatedAt = time.Now()
	s.db.courses[course.ID] = copyCourse(course)
	return nil
}

func (s *courseStore) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.db.courses, id)
	return nil
}

func (s *courseStore) SetRating(ctx context.Context, courseID, userID string, rating int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	course, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range course.Ratings {
		if course.Ratings[i].UserID == userID {
			course.Ratings[i].Rating = rating
			return nil
		}
	}
	course.Ratings = append(course.Ratings, shared.Rating{UserID: userID, Rating: rating})
	return nil
}

func (s *courseStore) AddEnrolledStudent(ctx context.Context, courseID, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	course, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	for _, id := range course.EnrolledStudents {
		if id == userID {
			return nil
		}
	}
	course.EnrolledStudents = append(course.EnrolledStudents, userID)
	return nil
}

func (s *courseStore) RemoveEnrolledStudent(ctx context.Context, courseID, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	course, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	kept := course.EnrolledStudents[:0]
	for _, id := range course.EnrolledStudents {
		if id != userID {
			kept = append(kept, id)
		}
	}
	course.EnrolledStudents = kept
	return nil
}

// ============================================================================
// Enrollments
// ============================================================================

type enrollmentStore struct {
	db *database
}

func (s *enrollmentStore) Insert(ctx context.Context, enrollment *shared.Enrollment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, rec := range s.db.enrollments {
		if rec.entry.UserID == enrollment.UserID && rec.entry.CourseID == enrollment.CourseID {
			return store.ErrDuplicate
		}
	}
	s.db.seq++
	s.db.enrollments[enrollment.ID] = &enrollmentRecord{
		entry: copyEnrollment(enrollment),
		seq:   s.db.seq,
	}
	return nil
}

func (s *enrollmentStore) Find(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, rec := range s.db.enrollments {
		if rec.entry.UserID == userID && rec.entry.CourseID == courseID {
			return copyEnrollment(rec.entry), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *enrollmentStore) ListByUser(ctx context.Context, userID string) ([]shared.Enrollment, error) {
	return s.list(func(e *shared.Enrollment) bool { return e.UserID == userID })
}

func (s *enrollmentStore) ListByCourses(ctx context.Context, courseIDs []string) ([]shared.Enrollment, error) {
	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	return s.list(func(e *shared.Enrollment) bool { return wanted[e.CourseID] })
}

func (s *enrollmentStore) list(match func(*shared.Enrollment) bool) ([]shared.Enrollment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	records := []*enrollmentRecord{}
	for _, rec := range s.db.enrollments {
		if match(rec.entry) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].entry.EnrolledAt.Equal(records[j].entry.EnrolledAt) {
			return records[i].seq > records[j].seq
		}
		return records[i].entry.EnrolledAt.After(records[j].entry.EnrolledAt)
	})

	enrollments := make([]shared.Enrollment, 0, len(records))
	for _, rec := range records {
		enrollments = append(enrollments, *copyEnrollment(rec.entry))
	}
	return enrollments, nil
}

func (s *enrollmentStore) UpdateProgress(ctx context.Context, id string, progress shared.Progress) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.enrollments[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.entry.Progress = shared.Progress{
		CompletedLectures:   append([]string(nil), progress.CompletedLectures...),
		LastAccessedLecture: progress.LastAccessedLecture,
		PercentComplete:     progress.PercentComplete,
	}
	return nil
}

func (s *enrollmentStore) Complete(ctx context.Context, id string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.enrollments[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.entry.Status = shared.StatusCompleted
	rec.entry.CompletedAt = &at
	rec.entry.Progress.PercentComplete = 100
	return nil
}

func (s *enrollmentStore) Delete(ctx context.Context, userID, courseID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for id, rec := range s.db.enrollments {
		if rec.entry.UserID == userID && rec.entry.CourseID == courseID {
			delete(s.db.enrollments, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *enrollmentStore) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var count int64
	for _, rec := range s.db.enrollments {
		if rec.entry.CourseID == courseID {
			count++
		}
	}
	return count, nil
}
