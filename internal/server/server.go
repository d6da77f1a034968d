package server

import (
	"net/http"
	"time"

	"github.com/mauv0809/courtbooker/internal/config"
)

// Server is the orchestrator's HTTP front end. It accepts booking requests,
// spools per-date config files and schedules their execution on the run
// queue.
type Server struct {
	Cfg            config.ServerConfig
	Base           config.Config
	Queue          *Queue
	Spool          *Spool
	MetricsHandler http.Handler
	Router         *http.ServeMux

	now func() time.Time
}

// NewServer wires the routes.
func NewServer(cfg config.ServerConfig, base config.Config, queue *Queue, spool *Spool, metricsHandler http.Handler) *Server {
	server := &Server{
		Cfg:            cfg,
		Base:           base,
		Queue:          queue,
		Spool:          spool,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
		now:            time.Now,
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper so
	// more middlewares (auth, rate limiting) slot in later.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/start", Chain(s.StartHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
