package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"easedrop/backend/config"
	"easedrop/backend/lifecycle"
	"easedrop/shared/endpoints"
)

type HttpMethod int

const (
	GET HttpMethod = 1 << iota
	PUT
	POST
	DELETE
	ALL = GET | PUT | POST | DELETE
)

var MethodMap = map[HttpMethod]string{
	GET:    http.MethodGet,
	PUT:    http.MethodPut,
	POST:   http.MethodPost,
	DELETE: http.MethodDelete,
}

// Server is the HTTP surface over the lifecycle manager. Handlers are
// routing glue: every decision about records lives in the manager.
type Server struct {
	cfg config.ServerConfig
	mgr *lifecycle.Manager
}

func New(cfg config.ServerConfig, mgr *lifecycle.Manager) *Server {
	return &Server{
		cfg: cfg,
		mgr: mgr,
	}
}

// Router maps URL paths to handlers.
func (s *Server) Router() http.Handler {
	r := &router{
		routes: make(map[Route]http.HandlerFunc),
		debug:  s.cfg.IsDebugMode,
	}

	r.AddRoutes([]RouteDef{
		{GET, endpoints.Salt, s.SaltHandler},
		{POST, endpoints.Upload, LimiterMiddleware(s.UploadHandler)},
		{GET, endpoints.Validate, s.ValidateHandler},
		{GET, endpoints.Download, LimiterMiddleware(s.DownloadHandler)},
		{GET, endpoints.Up, s.UpHandler},
	})

	return r
}

// Run begins listening on the provided address and blocks until the
// process receives an interrupt.
func (s *Server) Run(addr string) {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Running on http://%s\n", addr)
		err := http.ListenAndServe(addr, s.Router())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve returned err: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
}
