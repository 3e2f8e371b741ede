package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/Tomlord1122/todo-form/internal/modal"
	"github.com/Tomlord1122/todo-form/internal/service"
	"github.com/Tomlord1122/todo-form/internal/validation"
)

const keepAliveInterval = 25 * time.Second

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Datastar-Request", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.listHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/events", s.eventsHandler)

	r.Route("/todos", func(r chi.Router) {
		r.Post("/new", s.openCreateHandler)
		r.Post("/{id}/edit", s.openEditHandler)
		r.Post("/{id}/delete", s.openDeleteHandler)
	})

	r.Route("/form", func(r chi.Router) {
		r.Post("/submit", s.submitFormHandler)
		r.Post("/cancel", s.cancelFormHandler)
		r.Post("/validate", s.validateFormHandler)
	})

	r.Route("/delete", func(r chi.Router) {
		r.Post("/confirm", s.confirmDeleteHandler)
		r.Post("/cancel", s.cancelDeleteHandler)
	})

	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", s.getAllTodosHandler)
		r.Get("/{id}", s.getTodoByIDHandler)
	})

	return r
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	if err := s.renderer.RenderPage(&b, s.todoService.Page(r.Context())); err != nil {
		s.log.ErrorContext(r.Context(), "render page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "up",
		"message": "It's healthy",
		"store":   s.todoService.Stats(),
	})
}

// eventsHandler streams a fresh #todo-table whenever the store changes.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	changes, cancel := s.todoService.Changes()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	patch := func() error {
		html, err := s.renderer.RenderTable(s.todoService.Rows(r.Context()))
		if err != nil {
			return err
		}
		return sse.PatchElements(html)
	}
	if err := patch(); err != nil {
		s.log.WarnContext(r.Context(), "patch todo table", "error", err)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := patch(); err != nil {
				s.log.WarnContext(r.Context(), "patch todo table", "error", err)
				return
			}
		}
	}
}

func (s *Server) openCreateHandler(w http.ResponseWriter, r *http.Request) {
	s.todoService.OpenCreate(r.Context())
	redirectHome(w, r)
}

func (s *Server) openEditHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.todoService.OpenEdit(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeActionError(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) openDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.todoService.OpenDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeActionError(w, r, err)
		return
	}
	redirectHome(w, r)
}

// submitFormHandler redirects home either way: a blocked submission leaves
// the form open with its errors, which the page then shows.
func (s *Server) submitFormHandler(w http.ResponseWriter, r *http.Request) {
	values, err := formValuesFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form input", http.StatusBadRequest)
		return
	}
	if _, err := s.todoService.SubmitForm(r.Context(), values); err != nil {
		s.writeActionError(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) cancelFormHandler(w http.ResponseWriter, r *http.Request) {
	s.todoService.CancelForm(r.Context())
	redirectHome(w, r)
}

// validateFormHandler answers datastar's change events with the re-rendered form.
func (s *Server) validateFormHandler(w http.ResponseWriter, r *http.Request) {
	values, err := formValuesFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid form input", http.StatusBadRequest)
		return
	}
	f, err := s.todoService.ValidateForm(r.Context(), values)
	if err != nil {
		if errors.Is(err, modal.ErrNotOpen) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeActionError(w, r, err)
		return
	}
	html, err := s.renderer.RenderForm(f)
	if err != nil {
		s.log.ErrorContext(r.Context(), "render form", "error", err)
		http.Error(w, "Failed to render form", http.StatusInternalServerError)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElements(html)
}

func (s *Server) confirmDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.todoService.ConfirmDelete(r.Context()); err != nil {
		s.writeActionError(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) cancelDeleteHandler(w http.ResponseWriter, r *http.Request) {
	s.todoService.CancelDelete(r.Context())
	redirectHome(w, r)
}

func (s *Server) getAllTodosHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.todoService.GetAllTodos(r.Context()))
}

func (s *Server) getTodoByIDHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todoService.GetTodoByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if service.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.ErrorContext(r.Context(), "get todo", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) writeActionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, modal.ErrNotOpen):
		// A stale tab posted to a dialog that is no longer open.
		redirectHome(w, r)
	default:
		s.log.ErrorContext(r.Context(), "ui action failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Failed to process request", http.StatusInternalServerError)
	}
}

func formValuesFromRequest(r *http.Request) (validation.Values, error) {
	if err := r.ParseForm(); err != nil {
		return validation.Values{}, err
	}
	return validation.Values{
		UserName: r.PostForm.Get(validation.FieldUserName),
		Gender:   r.PostForm.Get(validation.FieldGender),
		Hobbies:  r.PostForm[validation.FieldHobbies],
		Age:      r.PostForm.Get(validation.FieldAge),
		Date:     r.PostForm.Get(validation.FieldDate),
		TaskName: r.PostForm.Get(validation.FieldTaskName),
		Status:   r.PostForm.Get(validation.FieldStatus),
	}, nil
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
