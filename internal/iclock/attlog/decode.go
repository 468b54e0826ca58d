// Package attlog decodes ATTLOG upload bodies into punch records.
//
// An upload body is one record per line with tab-separated columns:
//
//	<user_id>\t<punch_time>\t<state>\t<verify>\t<workcode>...
//
// Only the first two columns are used. Decoding is best effort per line:
// a malformed line is counted and skipped, it never aborts the batch.
package attlog

import (
	"strings"

	"github.com/BrandonDHaskell/punchclock/server/internal/iclock/types"
)

// Outcome summarises a decode result for operator logs.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeEmpty        Outcome = "empty"
	OutcomeAllMalformed Outcome = "all_malformed"
)

// Result holds the records of one body and per-line counts. Accepted plus
// Skipped equals the number of non-blank lines.
type Result struct {
	Records  []types.PunchRecord
	Accepted int
	Skipped  int
}

// Outcome reports why a result holds no records, or OutcomeAccepted.
func (r Result) Outcome() Outcome {
	switch {
	case r.Accepted > 0:
		return OutcomeAccepted
	case r.Skipped > 0:
		return OutcomeAllMalformed
	default:
		return OutcomeEmpty
	}
}

// Decode parses body with no device serial attached to the records.
func Decode(body string) Result {
	return DecodeFrom(body, "")
}

// DecodeFrom parses body and stamps every record with serial.
func DecodeFrom(body, serial string) Result {
	var res Result
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		rec.DeviceSerial = serial
		res.Records = append(res.Records, rec)
		res.Accepted++
	}
	return res
}

func parseLine(line string) (types.PunchRecord, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return types.PunchRecord{}, false
	}
	userID := strings.TrimSpace(fields[0])
	punchTime := strings.TrimSpace(fields[1])
	if userID == "" || punchTime == "" {
		return types.PunchRecord{}, false
	}
	return types.PunchRecord{UserID: userID, PunchTime: punchTime}, true
}
