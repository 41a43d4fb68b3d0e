package noflood

import (
	"strconv"
	"strings"
	"time"
)

// Outcome is the verdict of a direct edit.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Reason explains an outcome; it maps onto a report text.
type Reason string

const (
	ReasonShow             Reason = "show"
	ReasonUpdated          Reason = "updated"
	ReasonUnchanged        Reason = "unchanged"
	ReasonLocked           Reason = "locked"
	ReasonBadParameter     Reason = "bad_parameter"
	ReasonUnknownCommand   Reason = "unknown_command"
	ReasonMissingParameter Reason = "missing_parameter"
	ReasonUsage            Reason = "usage"
)

var reasonText = map[Reason]string{
	ReasonShow:             "config_show",
	ReasonUpdated:          "config_updated",
	ReasonUnchanged:        "config_unchanged",
	ReasonLocked:           "config_locked",
	ReasonBadParameter:     "command_para",
	ReasonUnknownCommand:   "command_type",
	ReasonMissingParameter: "command_lack",
	ReasonUsage:            "command_usage",
}

// LangKey returns the catalogue key of the reason's report text.
func (r Reason) LangKey() string { return reasonText[r] }

// Subcommands of the direct-edit command.
const (
	SubShow    = "show"
	SubDefault = "default"
	SubDelete  = "delete"
	SubPurge   = "purge"
	SubLimit   = "limit"
	SubTime    = "time"
)

// Result is the state transition a direct edit produces. Record is the
// candidate to commit; Changed is set only when it differs from the input.
type Result struct {
	Outcome Outcome
	Reason  Reason
	Record  Record
	Changed bool
}

func reject(cur Record, reason Reason) Result {
	return Result{Outcome: Failure, Reason: reason, Record: cur}
}

// Reducer turns (current record, subcommand, argument) into a Result.
type Reducer struct {
	LockTTL time.Duration
	// LockOnEdit stamps the lock on every committed change.
	LockOnEdit bool
}

// Reduce validates one direct edit against cur. It never mutates cur.
func (rd Reducer) Reduce(cur Record, typ, arg string, now time.Time) Result {
	if typ == "" {
		return reject(cur, ReasonUsage)
	}
	if typ == SubShow {
		return Result{Outcome: Success, Reason: ReasonShow, Record: cur}
	}
	if !Unlocked(cur, now, rd.LockTTL) {
		return reject(cur, ReasonLocked)
	}

	next := cur
	switch typ {
	case SubDefault:
		if !cur.Default {
			next = DefaultRecord()
			next.Lock = cur.Lock
		}
	case SubDelete, SubPurge:
		if arg == "" {
			return reject(cur, ReasonMissingParameter)
		}
		var on bool
		switch strings.ToLower(arg) {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return reject(cur, ReasonBadParameter)
		}
		if typ == SubDelete {
			next.Delete = on
		} else {
			next.Purge = on
		}
		next.Default = false
	case SubLimit:
		if arg == "" {
			return reject(cur, ReasonMissingParameter)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || !ValidLimit(n) {
			return reject(cur, ReasonBadParameter)
		}
		next.Limit = n
		next.Default = false
	case SubTime:
		if arg == "" {
			return reject(cur, ReasonMissingParameter)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || !ValidTime(n) {
			return reject(cur, ReasonBadParameter)
		}
		next.Time = n
		next.Default = false
	default:
		return reject(cur, ReasonUnknownCommand)
	}

	if next == cur {
		return Result{Outcome: Success, Reason: ReasonUnchanged, Record: cur}
	}
	if rd.LockOnEdit {
		next = Acquire(next, now)
	}
	return Result{Outcome: Success, Reason: ReasonUpdated, Record: next, Changed: true}
}
