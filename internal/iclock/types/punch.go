package types

import "time"

// UnknownSerial stands in for a device that did not send SN.
const UnknownSerial = "UNKNOWN"

// PunchRecord is one decoded ATTLOG line.
type PunchRecord struct {
	UserID       string
	PunchTime    string // device-native format, passed through untouched
	DeviceSerial string
}

// Batch is the set of records accepted from a single upload request.
type Batch struct {
	ID           string // ULID
	DeviceSerial string
	ReceivedAt   time.Time
	Records      []PunchRecord
}

// StoredAttendanceLog is a persisted punch.
type StoredAttendanceLog struct {
	ID           int64
	BatchID      string
	UserID       string
	PunchTime    string
	DeviceSerial string
	IsSynced     bool
	ReceivedAt   time.Time
}
