package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnhub/internal/educator"
)

func callerFrom(r *http.Request) educator.Caller {
	id, _ := identityFrom(r.Context())
	return educator.Caller{UserID: id.UserID, Role: id.Role}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	dashboard, err := s.educators.GetDashboard(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"dashboard": dashboard,
	})
}

func (s *Server) handleEnrolledStudents(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	students, err := s.educators.EnrolledStudents(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"enrolledStudents": students,
	})
}

func (s *Server) handleMyCourses(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courses, err := s.educators.MyCourses(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{"courses": courses})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var in educator.CourseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	course, err := s.educators.CreateCourse(r.Context(), id.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, true, "course created", map[string]any{
		"course": course,
	})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var in educator.CourseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	course, err := s.educators.UpdateCourse(r.Context(), callerFrom(r), courseID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "course updated", map[string]any{
		"course": course,
	})
}

func (s *Server) handlePublishCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var in struct {
		IsPublished bool `json:"isPublished"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	course, err := s.educators.SetPublished(r.Context(), callerFrom(r), courseID, in.IsPublished)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "course unpublished"
	if course.IsPublished {
		message = "course published"
	}
	writeJSON(w, http.StatusOK, true, message, map[string]any{
		"course": course,
	})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	if err := s.educators.DeleteCourse(r.Context(), callerFrom(r), courseID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "course deleted", nil)
}
