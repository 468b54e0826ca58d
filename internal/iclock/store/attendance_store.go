package store

import (
	"context"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
)

// AttendanceStore persists punch batches as an append-only log.
//
// PersistBatch is atomic: either every record of the batch is stored and the
// record count is returned, or nothing is stored and an error is returned.
type AttendanceStore interface {
	PersistBatch(ctx context.Context, b types.Batch) (int, error)
}
