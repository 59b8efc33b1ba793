package http

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
)

// Server оборачивает http.Server с таймаутами из конфигурации.
type Server struct {
	srv *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run блокирует до остановки сервера.
func (s *Server) Run() error {
	return s.srv.ListenAndServe()
}

// Stop мягко гасит сервер, дожидаясь активных запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
