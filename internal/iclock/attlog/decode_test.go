package attlog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/attlog"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		accepted int
		skipped  int
		users    []string
		outcome  attlog.Outcome
	}{
		{
			name:     "single punch",
			body:     "1001\t2024-01-01 08:00:00\n",
			accepted: 1,
			users:    []string{"1001"},
			outcome:  attlog.OutcomeAccepted,
		},
		{
			name:    "empty body",
			body:    "",
			outcome: attlog.OutcomeEmpty,
		},
		{
			name:    "only blank lines",
			body:    "\n  \n\t\n",
			outcome: attlog.OutcomeEmpty,
		},
		{
			name:     "malformed line is skipped",
			body:     "bad_line_no_tab\n1002\t2024-01-01 09:00:00\n",
			accepted: 1,
			skipped:  1,
			users:    []string{"1002"},
			outcome:  attlog.OutcomeAccepted,
		},
		{
			name:    "all malformed",
			body:    "nope\nstill nope\n",
			skipped: 2,
			outcome: attlog.OutcomeAllMalformed,
		},
		{
			name:     "extra columns ignored and no trailing newline",
			body:     "7\t2024-01-01 08:00:00\t0\t1\t0\t0\n8\t2024-01-01 08:01:00\t1\t1",
			accepted: 2,
			users:    []string{"7", "8"},
			outcome:  attlog.OutcomeAccepted,
		},
		{
			name:     "crlf line endings",
			body:     "1\t2024-01-01 08:00:00\r\n2\t2024-01-01 08:05:00\r\n",
			accepted: 2,
			users:    []string{"1", "2"},
			outcome:  attlog.OutcomeAccepted,
		},
		{
			name:    "empty columns are malformed",
			body:    "1001\t\t0\n\t2024-01-01 08:00:00\n",
			skipped: 2,
			outcome: attlog.OutcomeAllMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := attlog.Decode(tt.body)
			require.Equal(t, tt.accepted, res.Accepted)
			require.Equal(t, tt.skipped, res.Skipped)
			require.Len(t, res.Records, tt.accepted)
			require.Equal(t, tt.outcome, res.Outcome())

			var users []string
			for _, r := range res.Records {
				users = append(users, r.UserID)
			}
			require.Equal(t, tt.users, users)
		})
	}
}

func TestDecode_CountsCoverEveryNonBlankLine(t *testing.T) {
	body := "a\tb\n\nc\nd\te\tf\n   \ng\n"
	res := attlog.Decode(body)

	nonBlank := 0
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) != "" {
			nonBlank++
		}
	}
	require.Equal(t, nonBlank, res.Accepted+res.Skipped)
}

func TestDecode_Deterministic(t *testing.T) {
	body := "1\t2024-01-01 08:00:00\nx\n2\t2024-01-01 09:00:00\n"
	require.Equal(t, attlog.Decode(body), attlog.Decode(body))
}

func TestDecodeFrom_StampsSerial(t *testing.T) {
	res := attlog.DecodeFrom("1\t2024-01-01 08:00:00\n", "CQZ7224460246")
	require.Len(t, res.Records, 1)
	require.Equal(t, "CQZ7224460246", res.Records[0].DeviceSerial)
	require.Equal(t, "2024-01-01 08:00:00", res.Records[0].PunchTime)
}
