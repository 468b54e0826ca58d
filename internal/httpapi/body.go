package httpapi

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// defaultMaxBody caps an upload body. Devices send ATTLOG batches of a few
// hundred lines, each well under 100 bytes.
const defaultMaxBody = 8 << 20

// readBody reads at most limit bytes of the request body as UTF-8. A leading
// UTF-8 or UTF-16 byte order mark is honoured and stripped. truncated reports
// a body longer than limit; the text returned is then only its first limit
// bytes. On error the text read so far is discarded.
func readBody(r *http.Request, limit int64) (body string, truncated bool, err error) {
	if r.Body == nil {
		return "", false, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return "", false, errors.Wrap(err, "read body")
	}
	if int64(len(raw)) > limit {
		raw, truncated = raw[:limit], true
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", truncated, errors.Wrap(err, "decode body")
	}
	return string(b), truncated, nil
}
