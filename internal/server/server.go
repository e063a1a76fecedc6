package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/database"
	"github.com/Tomlord1122/tick/internal/service"
)

type Server struct {
	cfg         config.HTTPConfig
	todoService service.TodoService
	db          database.Service
	now         func() time.Time
}

// New builds the handler-side server. db may be nil, in which case /health
// reports the store as down.
func New(cfg config.HTTPConfig, todoService service.TodoService, dbService database.Service) *Server {
	return &Server{
		cfg:         cfg,
		todoService: todoService,
		db:          dbService,
		now:         time.Now,
	}
}

// NewServer wires the router into an *http.Server listening on cfg.Port.
func NewServer(cfg config.HTTPConfig, todoService service.TodoService, dbService database.Service) *http.Server {
	appServer := New(cfg, todoService, dbService)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
