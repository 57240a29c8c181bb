package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.courses.ListPublished(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{"courses": courses})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	viewerID := ""
	if id, ok := identityFrom(r.Context()); ok {
		viewerID = id.UserID
	}

	course, isEnrolled, err := s.courses.GetCourse(r.Context(), courseID, viewerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"course":     course,
		"isEnrolled": isEnrolled,
	})
}

func (s *Server) handleListEnrolled(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	enrolled, err := s.courses.ListEnrolled(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "", map[string]any{
		"enrolledCourses": enrolled,
	})
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courseID := chi.URLParam(r, "courseID")

	enrollment, err := s.courses.Enroll(r.Context(), id.UserID, courseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, true, "enrolled", map[string]any{
		"enrollment": enrollment,
	})
}

func (s *Server) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courseID := chi.URLParam(r, "courseID")

	if err := s.courses.Unenroll(r.Context(), id.UserID, courseID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "unenrolled", nil)
}

func (s *Server) handleMarkLecture(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courseID := chi.URLParam(r, "courseID")

	var in struct {
		LectureID string `json:"lectureId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	enrollment, err := s.courses.MarkLectureComplete(r.Context(), id.UserID, courseID, in.LectureID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "progress updated", map[string]any{
		"enrollment": enrollment,
	})
}

func (s *Server) handleCompleteCourse(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courseID := chi.URLParam(r, "courseID")

	enrollment, err := s.courses.CompleteCourse(r.Context(), id.UserID, courseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "course completed", map[string]any{
		"enrollment": enrollment,
	})
}

func (s *Server) handleRateCourse(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	courseID := chi.URLParam(r, "courseID")

	var in struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.courses.RateCourse(r.Context(), id.UserID, courseID, in.Rating); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true, "rating saved", nil)
}
