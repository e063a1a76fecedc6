package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/server/bind"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// set before Route so the mounted /todos router inherits them
	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/health", s.healthHandler)

	r.Route("/todos", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(requestTimeout(s.cfg.RequestTimeout))
		}
		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)
		r.Get("/autocomplete", s.autocompleteHandler)
		r.Get("/{id}", s.getTodoHandler)
		r.Put("/{id}", s.updateTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
		r.Post("/{id}/toggle", s.toggleTodoHandler)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	todos, err := s.todoService.ListTodos(r.Context(), q)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondItems(w, todos)
}

func (s *Server) getTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	todo, err := s.todoService.GetTodo(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondItem(w, http.StatusOK, todo)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := bind.JSON[domain.Todo](r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	created, err := s.todoService.CreateTodo(r.Context(), payload)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondItem(w, http.StatusCreated, created)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	payload, err := bind.JSON[domain.Todo](r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := s.todoService.UpdateTodo(r.Context(), id, payload); err != nil {
		respondWithError(w, r, err)
		return
	}

	respondOK(w)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), id); err != nil {
		respondWithError(w, r, err)
		return
	}

	respondOK(w)
}

// autocompleteHandler serves the legacy search endpoint; new callers use the
// search parameter of GET /todos.
func (s *Server) autocompleteHandler(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todoService.Autocomplete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondItems(w, todos)
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	todo, err := s.todoService.ToggleTodo(r.Context(), id, s.now())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondItem(w, http.StatusOK, todo)
}
