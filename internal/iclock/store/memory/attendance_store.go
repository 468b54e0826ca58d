package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
)

var ErrInvalidRecord = errors.New("user_id and punch_time are required")

// AttendanceStore is an in-memory append-only punch log.
// It is intended for use in tests and dev environments.
type AttendanceStore struct {
	mu     sync.Mutex
	nextID int64
	logs   []types.StoredAttendanceLog
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{nextID: 1}
}

func (s *AttendanceStore) PersistBatch(_ context.Context, b types.Batch) (int, error) {
	if len(b.Records) == 0 {
		return 0, nil
	}
	receivedAt := b.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	// Validate up front so a bad record leaves nothing behind.
	for i, r := range b.Records {
		if strings.TrimSpace(r.UserID) == "" || strings.TrimSpace(r.PunchTime) == "" {
			return 0, errors.Wrapf(ErrInvalidRecord, "record %d of batch %s", i, b.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range b.Records {
		serial := r.DeviceSerial
		if serial == "" {
			serial = b.DeviceSerial
		}
		if serial == "" {
			serial = types.UnknownSerial
		}
		s.logs = append(s.logs, types.StoredAttendanceLog{
			ID:           s.nextID,
			BatchID:      b.ID,
			UserID:       r.UserID,
			PunchTime:    r.PunchTime,
			DeviceSerial: serial,
			ReceivedAt:   receivedAt.UTC(),
		})
		s.nextID++
	}
	return len(b.Records), nil
}

// Logs returns a copy of all stored punches.
func (s *AttendanceStore) Logs() []types.StoredAttendanceLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.StoredAttendanceLog, len(s.logs))
	copy(out, s.logs)
	return out
}
