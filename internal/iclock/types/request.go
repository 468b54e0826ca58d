package types

import "strings"

// RequestKind is the protocol state a request was classified into.
type RequestKind int

const (
	KindFallback RequestKind = iota
	KindHandshake
	KindUploadAttlog
	KindUploadOther
	KindHeartbeat
)

func (k RequestKind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindUploadAttlog:
		return "upload_attlog"
	case KindUploadOther:
		return "upload_other"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "fallback"
	}
}

// TableKind is the upload table named by the `table` query parameter.
type TableKind int

const (
	TableNone TableKind = iota
	TableAttLog
	TableOperLog
	TableAttPhoto
	TableUserInfo
	TableBioData
	TableOptions
	// TableUnhandled covers table names this server does not know yet.
	TableUnhandled
)

var tableNames = map[string]TableKind{
	"ATTLOG":   TableAttLog,
	"OPERLOG":  TableOperLog,
	"ATTPHOTO": TableAttPhoto,
	"USERINFO": TableUserInfo,
	"BIODATA":  TableBioData,
	"OPTIONS":  TableOptions,
}

// ParseTable maps a table name, compared case-insensitively, to its kind.
func ParseTable(name string) TableKind {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return TableNone
	}
	if k, ok := tableNames[name]; ok {
		return k
	}
	return TableUnhandled
}

func (t TableKind) String() string {
	for name, k := range tableNames {
		if k == t {
			return name
		}
	}
	if t == TableNone {
		return ""
	}
	return "UNHANDLED"
}
