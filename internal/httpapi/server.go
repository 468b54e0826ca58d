package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/service"
)

const (
	PathData      = "/iclock/cdata"
	PathHeartbeat = "/iclock/getrequest"
)

type Dependencies struct {
	Logger       logrus.FieldLogger
	Addr         string
	Responder    *service.SessionResponder
	MaxBodyBytes int64
}

type Server struct {
	httpServer   *http.Server
	logger       logrus.FieldLogger
	mux          *http.ServeMux
	responder    *service.SessionResponder
	maxBodyBytes int64
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:       d.Logger,
		mux:          mux,
		responder:    d.Responder,
		maxBodyBytes: d.MaxBodyBytes,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBody
	}

	// No method patterns: the firmware must get 200 for every method.
	mux.HandleFunc(PathData, s.handle(service.EndpointData))
	mux.HandleFunc(PathHeartbeat, s.handle(service.EndpointHeartbeat))
	mux.HandleFunc("/", s.handle(service.EndpointOther))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handle(ep service.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := service.Request{
			Endpoint: ep,
			Method:   r.Method,
			Query:    r.URL.Query(),
		}
		if ep == service.EndpointData && r.Method == http.MethodPost {
			body, truncated, err := readBody(r, s.maxBodyBytes)
			if err != nil {
				requestLogger(s.logger, r).WithError(err).Warn("read body failed, treating as empty")
			}
			if truncated {
				requestLogger(s.logger, r).
					WithField("max_body_bytes", s.maxBodyBytes).
					Warn("request body over limit")
			}
			req.Body = body
			req.Truncated = truncated
		}

		resp := s.responder.Respond(r.Context(), req)
		writeText(w, resp.Body)
	}
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
