package types

import (
	"strconv"
	"strings"
	"time"
)

// HandshakeConfig holds the options returned to a device on first contact.
// The values other than SN and OpStamp are fixed by the firmware contract.
type HandshakeConfig struct {
	SN            string
	Stamp         string
	OpStamp       int64
	ErrorDelay    int
	Delay         int
	TransTimes    string
	TransInterval int
	TransFlag     string
	Realtime      int
	Encrypt       string
}

func NewHandshakeConfig(sn string, now time.Time) HandshakeConfig {
	if strings.TrimSpace(sn) == "" {
		sn = UnknownSerial
	}
	return HandshakeConfig{
		SN:            sn,
		Stamp:         "9999",
		OpStamp:       now.Unix(),
		ErrorDelay:    30,
		Delay:         10,
		TransTimes:    "00:00;23:59",
		TransInterval: 1,
		TransFlag:     "1111000000",
		Realtime:      1,
		Encrypt:       "None",
	}
}

// Lines returns the option lines in the order the firmware expects.
func (c HandshakeConfig) Lines() []string {
	return []string{
		"GET OPTION FROM: " + c.SN,
		"Stamp=" + c.Stamp,
		"OpStamp=" + strconv.FormatInt(c.OpStamp, 10),
		"ErrorDelay=" + strconv.Itoa(c.ErrorDelay),
		"Delay=" + strconv.Itoa(c.Delay),
		"TransTimes=" + c.TransTimes,
		"TransInterval=" + strconv.Itoa(c.TransInterval),
		"TransFlag=" + c.TransFlag,
		"Realtime=" + strconv.Itoa(c.Realtime),
		"Encrypt=" + c.Encrypt,
	}
}

func (c HandshakeConfig) String() string {
	return strings.Join(c.Lines(), "\n")
}
