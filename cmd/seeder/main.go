// ============================================================================
// cmd/seeder/main.go
// Seeds the database with demo accounts, courses and enrollments for local
// development. Drops the target database first.
// ============================================================================

package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"learnhub/internal/shared"
	"learnhub/internal/store"
)

// Every seeded account logs in with this password.
const seedPassword = "password"

func main() {
	shared.LoadEnv(".env")

	cfg, err := shared.LoadConfig()
	if err != nil {
		log.Fatalf("[seeder] invalid configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("[seeder] failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	log.Printf("[seeder] dropping database %q", cfg.MongoDB.Database)
	if err := db.Drop(ctx); err != nil {
		log.Fatalf("[seeder] failed to drop database: %v", err)
	}

	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("[seeder] failed to ensure indexes: %v", err)
	}

	stores := store.NewMongoStores(client, db)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
	if err != nil {
		log.Fatalf("[seeder] failed to hash password: %v", err)
	}

	now := time.Now()

	educator := &shared.User{
		ID:               shared.GenerateUserID(),
		Name:             "Grace Okafor",
		Email:            "grace@learnhub.dev",
		PasswordHash:     string(hash),
		Role:             shared.RoleEducator,
		Bio:              "Backend engineer teaching distributed systems.",
		Expertise:        []string{"Go", "Databases", "Distributed Systems"},
		ProfileCompleted: true,
		EnrolledCourses:  []string{},
		CreatedAt:        now,
	}

	students := []*shared.User{
		{
			ID:              shared.GenerateUserID(),
			Name:            "Miguel Santos",
			Email:           "miguel@learnhub.dev",
			PasswordHash:    string(hash),
			Role:            shared.RoleStudent,
			EnrolledCourses: []string{},
			CreatedAt:       now,
		},
		{
			ID:              shared.GenerateUserID(),
			Name:            "Priya Sharma",
			Email:           "priya@learnhub.dev",
			PasswordHash:    string(hash),
			Role:            shared.RoleStudent,
			EnrolledCourses: []string{},
			CreatedAt:       now,
		},
	}

	admin := &shared.User{
		ID:              shared.GenerateUserID(),
		Name:            "Site Admin",
		Email:           "admin@learnhub.dev",
		PasswordHash:    string(hash),
		Role:            shared.RoleAdmin,
		EnrolledCourses: []string{},
		CreatedAt:       now,
	}

	for _, u := range append([]*shared.User{educator, admin}, students...) {
		if err := stores.Users.Insert(ctx, u); err != nil {
			log.Fatalf("[seeder] failed to insert user %s: %v", u.Email, err)
		}
	}
	log.Printf("[seeder] inserted %d users", 2+len(students))

	courses := []*shared.Course{
		{
			ID:          shared.GenerateCourseID(),
			Title:       "Practical Go for Backend Services",
			Description: "Build and ship production HTTP services in Go.",
			Price:       49.99,
			Discount:    20,
			IsPublished: true,
			EducatorID:  educator.ID,
			Chapters: []shared.Chapter{
				{
					ID:    shared.GenerateChapterID(),
					Title: "Getting Started",
					Order: 1,
					Lectures: []shared.Lecture{
						{ID: shared.GenerateLectureID(), Title: "Project Layout", DurationMinutes: 12, IsPreviewFree: true, Order: 1},
						{ID: shared.GenerateLectureID(), Title: "HTTP Routing", DurationMinutes: 18, Order: 2},
					},
				},
				{
					ID:    shared.GenerateChapterID(),
					Title: "Persistence",
					Order: 2,
					Lectures: []shared.Lecture{
						{ID: shared.GenerateLectureID(), Title: "Document Modeling", DurationMinutes: 22, Order: 1},
					},
				},
			},
			EnrolledStudents: []string{},
			Ratings:          []shared.Rating{},
			CreatedAt:        now,
		},
		{
			ID:          shared.GenerateCourseID(),
			Title:       "MongoDB Schema Design",
			Description: "Denormalization, indexes and transactions done right.",
			Price:       39.00,
			Discount:    0,
			IsPublished: true,
			EducatorID:  educator.ID,
			Chapters: []shared.Chapter{
				{
					ID:    shared.GenerateChapterID(),
					Title: "Foundations",
					Order: 1,
					Lectures: []shared.Lecture{
						{ID: shared.GenerateLectureID(), Title: "Documents vs Rows", DurationMinutes: 15, IsPreviewFree: true, Order: 1},
					},
				},
			},
			EnrolledStudents: []string{},
			Ratings:          []shared.Rating{},
			CreatedAt:        now,
		},
		{
			ID:               shared.GenerateCourseID(),
			Title:            "Unreleased Draft Course",
			Description:      "Work in progress, hidden from the catalog.",
			Price:            0,
			IsPublished:      false,
			EducatorID:       educator.ID,
			Chapters:         []shared.Chapter{},
			EnrolledStudents: []string{},
			Ratings:          []shared.Rating{},
			CreatedAt:        now,
		},
	}

	for _, c := range courses {
		if err := stores.Courses.Insert(ctx, c); err != nil {
			log.Fatalf("[seeder] failed to insert course %s: %v", c.Title, err)
		}
	}
	log.Printf("[seeder] inserted %d courses", len(courses))

	// Enroll the first student in the first course, caches included.
	student, target := students[0], courses[0]
	enrollment := &shared.Enrollment{
		ID:       shared.GenerateEnrollmentID(),
		UserID:   student.ID,
		CourseID: target.ID,
		Status:   shared.StatusActive,
		Progress: shared.Progress{
			CompletedLectures: []string{},
			PercentComplete:   0,
		},
		EnrolledAt:    now,
		PurchasePrice: target.EffectivePrice(),
	}
	if err := stores.Enrollments.Insert(ctx, enrollment); err != nil {
		log.Fatalf("[seeder] failed to insert enrollment: %v", err)
	}
	if err := stores.Courses.AddEnrolledStudent(ctx, target.ID, student.ID); err != nil {
		log.Fatalf("[seeder] failed to update course cache: %v", err)
	}
	if err := stores.Users.AddEnrolledCourse(ctx, student.ID, target.ID); err != nil {
		log.Fatalf("[seeder] failed to update user cache: %v", err)
	}
	log.Println("[seeder] inserted 1 enrollment")

	log.Printf("[seeder] done. all accounts use password %q", seedPassword)
}
