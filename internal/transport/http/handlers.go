package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stress-quiz/internal/app"
	"stress-quiz/internal/domain"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ListCourses returns the course names of the mode's dataset.
func ListCourses(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names, err := service.Courses(r.Context(), mode)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Mode    domain.Mode `json:"mode"`
			Courses []string    `json:"courses"`
		}{Mode: mode, Courses: names})
	}
}

// GetCourse reports whether a course exists and which difficulties it offers.
func GetCourse(service *app.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		info, err := service.Course(r.Context(), mode, chi.URLParam(r, "course"))
		if err != nil {
			writeLookupError(w, err)
			return
		}
		status := http.StatusOK
		if !info.Exists {
			status = http.StatusNotFound
		}
		writeJSON(w, status, info)
	}
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrDatasetLoad) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
