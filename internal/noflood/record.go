// Package noflood implements the per-group flood configuration commands:
// parsing, the time-window lock, validation, assisted sessions through the
// configuration authority, and reporting.
package noflood

import (
	"fmt"
	"strings"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/lang"
)

// Value domains of the flood settings.
const (
	MinLimit = 2
	MaxLimit = 20
	MinTime  = 5
	MaxTime  = 60
	TimeStep = 5
)

// Record is one group's flood configuration.
type Record struct {
	Default bool  `json:"default"`
	Lock    int64 `json:"lock"` // unix seconds of the last lock acquisition
	Limit   int   `json:"limit"`
	Time    int   `json:"time"`
	Delete  bool  `json:"delete"`
	Purge   bool  `json:"purge"`
}

var defaultRecord = Record{
	Default: true,
	Lock:    0,
	Limit:   5,
	Time:    10,
	Delete:  true,
	Purge:   false,
}

// DefaultRecord returns a copy of the factory defaults.
func DefaultRecord() Record { return defaultRecord }

// ValidLimit reports whether n is an accepted message limit.
func ValidLimit(n int) bool { return n >= MinLimit && n <= MaxLimit }

// ValidTime reports whether n is one of the accepted time windows.
func ValidTime(n int) bool { return n >= MinTime && n <= MaxTime && n%TimeStep == 0 }

// SameSettings compares everything except the lock timestamp.
func SameSettings(a, b Record) bool {
	a.Lock, b.Lock = 0, 0
	return a == b
}

// MatchesDefaults reports whether the settings equal the factory defaults,
// regardless of the default flag and the lock.
func (r Record) MatchesDefaults() bool {
	r.Default = true
	return SameSettings(r, defaultRecord)
}

// Validate checks that every setting is inside its domain and that the
// default flag agrees with the settings.
func (r Record) Validate() error {
	if !ValidLimit(r.Limit) {
		return fmt.Errorf("limit %d out of range [%d,%d]", r.Limit, MinLimit, MaxLimit)
	}
	if !ValidTime(r.Time) {
		return fmt.Errorf("time %d is not a multiple of %d in [%d,%d]", r.Time, TimeStep, MinTime, MaxTime)
	}
	if r.Default && !SameSettings(r, defaultRecord) {
		return fmt.Errorf("record flagged default differs from defaults")
	}
	return nil
}

// Text renders the settings for the show report.
func (r Record) Text() string {
	var sb strings.Builder
	line := func(key, value string) {
		sb.WriteString(lang.Get(key) + lang.Get("colon") + "`" + value + "`\n")
	}
	line("default", lang.YesNo(r.Default))
	line("delete", lang.YesNo(r.Delete))
	line("limit", fmt.Sprintf("%d", r.Limit))
	line("time", fmt.Sprintf("%d%s", r.Time, lang.Get("seconds")))
	line("purge", lang.YesNo(r.Purge))
	return sb.String()
}
