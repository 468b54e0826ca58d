package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/attlog"
	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/store"
	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
	"github.com/BrandonDHaskell/punchclock/server/internal/logging"
)

// Endpoint is the logical path a device request arrived on.
type Endpoint int

const (
	EndpointOther Endpoint = iota
	EndpointData           // /iclock/cdata
	EndpointHeartbeat      // /iclock/getrequest
)

const ack = "OK"

type Request struct {
	Endpoint Endpoint
	Method   string
	Query    url.Values
	Body     string

	// Truncated is set when the transport cut the body short. The body is
	// then incomplete and must not be decoded.
	Truncated bool
}

// Serial returns the device serial from SN, or UNKNOWN.
func (r Request) Serial() string {
	if sn := strings.TrimSpace(r.Query.Get("SN")); sn != "" {
		return sn
	}
	return types.UnknownSerial
}

// Response is the text for the device plus what the responder decided.
type Response struct {
	Kind     types.RequestKind
	Body     string
	Accepted int
}

// Classify decides the protocol state of r. A POST is always judged by its
// table name, whatever else it carries.
func Classify(r Request) types.RequestKind {
	switch r.Endpoint {
	case EndpointHeartbeat:
		return types.KindHeartbeat
	case EndpointData:
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			if r.Query.Get("options") == "all" {
				return types.KindHandshake
			}
		case http.MethodPost:
			if types.ParseTable(r.Query.Get("table")) == types.TableAttLog {
				return types.KindUploadAttlog
			}
			return types.KindUploadOther
		}
	}
	return types.KindFallback
}

// SessionResponder turns one device request into the text the firmware
// expects. Only ATTLOG uploads touch the store.
type SessionResponder struct {
	store        store.AttendanceStore
	logger       logrus.FieldLogger
	now          func() time.Time
	newBatchID   func() string
	heartbeatLog *logging.Throttle
}

// ResponderCfg configures a SessionResponder.
type ResponderCfg func(*SessionResponder) error

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ResponderCfg {
	return func(s *SessionResponder) error {
		if now == nil {
			return errors.New("nil clock")
		}
		s.now = now
		return nil
	}
}

// WithHeartbeatLogInterval sets how often heartbeat polls are logged.
func WithHeartbeatLogInterval(d time.Duration) ResponderCfg {
	return func(s *SessionResponder) error {
		if d < 0 {
			return errors.Errorf("negative heartbeat log interval %s", d)
		}
		s.heartbeatLog = logging.NewThrottle(d)
		return nil
	}
}

// WithBatchIDs replaces the ULID batch id generator.
func WithBatchIDs(gen func() string) ResponderCfg {
	return func(s *SessionResponder) error {
		if gen == nil {
			return errors.New("nil batch id generator")
		}
		s.newBatchID = gen
		return nil
	}
}

// NewSessionResponder creates a SessionResponder persisting ATTLOG batches
// to st. Both st and logger are required.
func NewSessionResponder(st store.AttendanceStore, logger logrus.FieldLogger, cfgs ...ResponderCfg) (*SessionResponder, error) {
	if st == nil {
		return nil, errors.New("attendance store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	s := &SessionResponder{
		store:        st,
		logger:       logger,
		now:          time.Now,
		newBatchID:   func() string { return ulid.Make().String() },
		heartbeatLog: logging.NewThrottle(5 * time.Second),
	}
	for _, cfg := range cfgs {
		if err := cfg(s); err != nil {
			return nil, errors.Wrap(err, "apply SessionResponder cfg failed")
		}
	}
	return s, nil
}

// Respond classifies r and builds the reply. It never fails: storage errors
// are logged and acknowledged as zero accepted records.
func (s *SessionResponder) Respond(ctx context.Context, r Request) Response {
	kind := Classify(r)
	switch kind {
	case types.KindHandshake:
		return s.handshake(r)
	case types.KindUploadAttlog:
		return s.uploadAttlog(ctx, r)
	case types.KindUploadOther:
		s.logger.WithFields(logrus.Fields{
			"sn":    r.Serial(),
			"table": types.ParseTable(r.Query.Get("table")).String(),
			"raw":   r.Query.Get("table"),
			"bytes": len(r.Body),
		}).Info("table upload acknowledged without parsing")
		return Response{Kind: kind, Body: ack}
	case types.KindHeartbeat:
		if s.heartbeatLog.Allow(s.now()) {
			s.logger.WithFields(logging.QueryFields(r.Query)).Debug("device poll")
		}
		return Response{Kind: kind, Body: ack}
	default:
		return Response{Kind: kind, Body: ack}
	}
}

func (s *SessionResponder) handshake(r Request) Response {
	cfg := types.NewHandshakeConfig(r.Serial(), s.now())
	s.logger.WithFields(logrus.Fields{
		"sn":       cfg.SN,
		"op_stamp": cfg.OpStamp,
	}).Info("handshake")
	return Response{Kind: types.KindHandshake, Body: cfg.String()}
}

func (s *SessionResponder) uploadAttlog(ctx context.Context, r Request) Response {
	serial := r.Serial()
	if r.Truncated {
		// A cut body ends mid-line; storing any of it risks a clipped punch_time.
		s.logger.WithFields(logrus.Fields{
			"sn":      serial,
			"bytes":   len(r.Body),
			"outcome": "body_too_large",
		}).Warn("ATTLOG body over size limit, nothing stored")
		return attlogAck(0)
	}
	res := attlog.DecodeFrom(r.Body, serial)

	log := s.logger.WithFields(logrus.Fields{
		"sn":      serial,
		"decoded": res.Accepted,
		"skipped": res.Skipped,
	})
	if res.Skipped > 0 {
		log.Warn("ATTLOG lines skipped")
	}
	if res.Accepted == 0 {
		log.WithField("outcome", res.Outcome()).Info("ATTLOG batch stored nothing")
		return attlogAck(0)
	}

	batch := types.Batch{
		ID:           s.newBatchID(),
		DeviceSerial: serial,
		ReceivedAt:   s.now().UTC(),
		Records:      res.Records,
	}
	n, err := s.store.PersistBatch(ctx, batch)
	if err != nil {
		// The device resends the batch when it sees zero accepted.
		log.WithFields(logging.BatchFields(batch)).
			WithField("outcome", "storage_failed").
			WithError(err).
			Error("ATTLOG batch rolled back")
		return attlogAck(0)
	}

	log.WithFields(logging.BatchFields(batch)).
		WithField("outcome", attlog.OutcomeAccepted).
		Info("ATTLOG batch stored")
	return attlogAck(n)
}

func attlogAck(n int) Response {
	return Response{
		Kind:     types.KindUploadAttlog,
		Body:     "OK: " + strconv.Itoa(n),
		Accepted: n,
	}
}
