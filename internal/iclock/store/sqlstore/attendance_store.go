package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	dbpkg "github.com/BrandonDHaskell/punchclock/server/internal/db"
	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
)

// AttendanceStore writes punches to the attendance_logs table. Writes go
// through the single-writer Worker; reads use the pool directly.
type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(db *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer}
}

// PersistBatch inserts every record of b in one transaction.
func (s *AttendanceStore) PersistBatch(ctx context.Context, b types.Batch) (int, error) {
	if len(b.Records) == 0 {
		return 0, nil
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = time.Now().UTC()
	}
	recvMs := b.ReceivedAt.UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO attendance_logs(
  batch_id, device_serial, user_id, punch_time, is_synced, received_at_ms
) VALUES (?, ?, ?, ?, 0, ?);
`)
		if err != nil {
			return errors.Wrap(err, "PersistBatch prepare")
		}
		defer stmt.Close()

		for i, r := range b.Records {
			serial := r.DeviceSerial
			if serial == "" {
				serial = b.DeviceSerial
			}
			if serial == "" {
				serial = types.UnknownSerial
			}
			if _, err := stmt.ExecContext(ctx, b.ID, serial, r.UserID, r.PunchTime, recvMs); err != nil {
				return errors.Wrapf(err, "PersistBatch insert record %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(b.Records), nil
}

// ListUnsynced returns up to limit punches not yet forwarded downstream,
// oldest first.
func (s *AttendanceStore) ListUnsynced(ctx context.Context, limit int) ([]types.StoredAttendanceLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, batch_id, device_serial, user_id, punch_time, is_synced, received_at_ms
FROM attendance_logs
WHERE is_synced = 0
ORDER BY id
LIMIT ?;
`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "ListUnsynced query")
	}
	defer rows.Close()

	var out []types.StoredAttendanceLog
	for rows.Next() {
		var (
			l      types.StoredAttendanceLog
			synced int
			recvMs int64
		)
		if err := rows.Scan(&l.ID, &l.BatchID, &l.DeviceSerial, &l.UserID, &l.PunchTime, &synced, &recvMs); err != nil {
			return nil, errors.Wrap(err, "ListUnsynced scan")
		}
		l.IsSynced = synced == 1
		l.ReceivedAt = time.UnixMilli(recvMs).UTC()
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "ListUnsynced rows")
}

// CountByBatch reports how many rows were stored for a batch id.
func (s *AttendanceStore) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_logs WHERE batch_id = ?;`, batchID,
	).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "CountByBatch")
	}
	return n, nil
}
