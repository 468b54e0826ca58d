package logging_test

import (
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
	"github.com/BrandonDHaskell/punchclock/server/internal/logging"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, logrus.WarnLevel, logging.ParseLevel("warn"))
	require.Equal(t, logrus.InfoLevel, logging.ParseLevel("nonsense"))
	require.Equal(t, logrus.InfoLevel, logging.New("").GetLevel())
}

func TestQueryFields(t *testing.T) {
	f := logging.QueryFields(url.Values{"SN": {"ABC"}, "table": {"ATTLOG"}})
	require.Equal(t, "ABC", f["q_SN"])
	require.Equal(t, "ATTLOG", f["q_table"])
}

func TestBatchFields(t *testing.T) {
	f := logging.BatchFields(types.Batch{ID: "x", DeviceSerial: "SN", Records: make([]types.PunchRecord, 3)})
	require.Equal(t, 3, f["records"])
	require.Equal(t, "SN", f["sn"])
}

func TestThrottle_AllowsOncePerInterval(t *testing.T) {
	th := logging.NewThrottle(5 * time.Second)
	base := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	require.True(t, th.Allow(base))
	require.False(t, th.Allow(base.Add(time.Second)))
	require.False(t, th.Allow(base.Add(4999*time.Millisecond)))
	require.True(t, th.Allow(base.Add(5*time.Second)))
}

func TestThrottle_ZeroIntervalAllowsAll(t *testing.T) {
	th := logging.NewThrottle(0)
	now := time.Now()
	require.True(t, th.Allow(now))
	require.True(t, th.Allow(now))
}

func TestThrottle_ConcurrentCallersOneWinner(t *testing.T) {
	th := logging.NewThrottle(time.Hour)
	now := time.Now()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if th.Allow(now) {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), allowed.Load())
}
