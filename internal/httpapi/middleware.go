package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

func loggingMiddleware(logger logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		id := uuid.NewString()
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		next.ServeHTTP(w, r)

		requestLogger(logger, r).WithField("dur", time.Since(start)).Debug("request")
	})
}

// requestLogger decorates logger with the request id and route.
func requestLogger(logger logrus.FieldLogger, r *http.Request) logrus.FieldLogger {
	f := logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"from":   r.RemoteAddr,
	}
	if id, ok := r.Context().Value(ctxKey{}).(string); ok {
		f["request_id"] = id
	}
	return logger.WithFields(f)
}
