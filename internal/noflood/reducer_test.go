package noflood

import (
	"fmt"
	"testing"
	"time"
)

const testTTL = 310 * time.Second

var t0 = time.Unix(1_700_000_000, 0)

func newReducer() Reducer {
	return Reducer{LockTTL: testTTL, LockOnEdit: true}
}

func TestReduce_LimitDomain(t *testing.T) {
	rd := newReducer()
	for n := -5; n <= 100; n++ {
		res := rd.Reduce(DefaultRecord(), SubLimit, fmt.Sprint(n), t0)
		want := n >= 2 && n <= 20
		if got := res.Outcome == Success; got != want {
			t.Errorf("limit %d: accepted=%v, want %v (reason %s)", n, got, want, res.Reason)
		}
		if !want && res.Reason != ReasonBadParameter {
			t.Errorf("limit %d: expected bad parameter, got %s", n, res.Reason)
		}
	}
}

func TestReduce_TimeDomain(t *testing.T) {
	rd := newReducer()
	for n := -5; n <= 100; n++ {
		res := rd.Reduce(DefaultRecord(), SubTime, fmt.Sprint(n), t0)
		want := n >= 5 && n <= 60 && n%5 == 0
		if got := res.Outcome == Success; got != want {
			t.Errorf("time %d: accepted=%v, want %v", n, got, want)
		}
	}
}

func TestReduce_NonNumeric(t *testing.T) {
	rd := newReducer()
	for _, arg := range []string{"ten", "1.5", "15s", "0x10"} {
		if res := rd.Reduce(DefaultRecord(), SubLimit, arg, t0); res.Reason != ReasonBadParameter {
			t.Errorf("limit %q: expected bad parameter, got %s", arg, res.Reason)
		}
	}
}

func TestReduce_ScenarioA_LimitAccepted(t *testing.T) {
	res := newReducer().Reduce(DefaultRecord(), SubLimit, "15", t0)
	if res.Outcome != Success || res.Reason != ReasonUpdated || !res.Changed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Record.Limit != 15 || res.Record.Default {
		t.Errorf("unexpected record: %+v", res.Record)
	}
	if res.Record.Lock != t0.Unix() {
		t.Errorf("expected lock stamped at %d, got %d", t0.Unix(), res.Record.Lock)
	}
}

func TestReduce_ScenarioB_LockedAfterEdit(t *testing.T) {
	rd := newReducer()
	first := rd.Reduce(DefaultRecord(), SubLimit, "15", t0)
	res := rd.Reduce(first.Record, SubTime, "7", t0.Add(5*time.Second))
	if res.Outcome != Failure || res.Reason != ReasonLocked {
		t.Fatalf("expected locked rejection, got %+v", res)
	}
	if res.Record != first.Record || res.Changed {
		t.Error("locked rejection must not change the record")
	}
}

func TestReduce_ScenarioC_BadBoolean(t *testing.T) {
	res := newReducer().Reduce(DefaultRecord(), SubPurge, "maybe", t0)
	if res.Outcome != Failure || res.Reason != ReasonBadParameter {
		t.Fatalf("expected bad parameter, got %+v", res)
	}
	if res.Record != DefaultRecord() {
		t.Error("rejection must return the record unchanged")
	}
}

func TestReduce_ScenarioD_DefaultIdempotent(t *testing.T) {
	res := newReducer().Reduce(DefaultRecord(), SubDefault, "", t0)
	if res.Outcome != Success || res.Changed {
		t.Fatalf("expected unchanged success, got %+v", res)
	}
	if res.Reason != ReasonUnchanged {
		t.Errorf("expected reason unchanged, got %s", res.Reason)
	}
	if res.Record.Lock != 0 {
		t.Error("no-op must not take the lock")
	}
}

func TestReduce_DefaultResets(t *testing.T) {
	cur := DefaultRecord()
	cur.Default = false
	cur.Limit = 12
	cur.Purge = true
	cur.Lock = t0.Add(-time.Hour).Unix()

	res := newReducer().Reduce(cur, SubDefault, "", t0)
	if !res.Changed || res.Outcome != Success {
		t.Fatalf("expected reset, got %+v", res)
	}
	if !SameSettings(res.Record, DefaultRecord()) || !res.Record.Default {
		t.Errorf("expected default settings, got %+v", res.Record)
	}
}

func TestReduce_Booleans(t *testing.T) {
	rd := newReducer()
	res := rd.Reduce(DefaultRecord(), SubDelete, "OFF", t0)
	if res.Outcome != Success || res.Record.Delete {
		t.Fatalf("expected delete off, got %+v", res)
	}
	res = rd.Reduce(DefaultRecord(), SubPurge, "on", t0)
	if res.Outcome != Success || !res.Record.Purge || res.Record.Default {
		t.Fatalf("expected purge on, got %+v", res)
	}
}

func TestReduce_SameValueClearsDefaultFlag(t *testing.T) {
	res := newReducer().Reduce(DefaultRecord(), SubLimit, fmt.Sprint(DefaultRecord().Limit), t0)
	if !res.Changed || res.Record.Default {
		t.Errorf("expected default flag cleared, got %+v", res)
	}

	// A second identical edit on a non-default record is a no-op.
	cur := res.Record
	cur.Lock = 0
	again := newReducer().Reduce(cur, SubLimit, fmt.Sprint(cur.Limit), t0)
	if again.Changed || again.Reason != ReasonUnchanged {
		t.Errorf("expected no-op, got %+v", again)
	}
}

func TestReduce_Rejections(t *testing.T) {
	rd := newReducer()
	cases := []struct {
		typ, arg string
		want     Reason
	}{
		{"", "", ReasonUsage},
		{"limit", "", ReasonMissingParameter},
		{"time", "", ReasonMissingParameter},
		{"delete", "", ReasonMissingParameter},
		{"flood", "on", ReasonUnknownCommand},
		{"flood", "", ReasonUnknownCommand},
	}
	for _, c := range cases {
		res := rd.Reduce(DefaultRecord(), c.typ, c.arg, t0)
		if res.Outcome != Failure || res.Reason != c.want {
			t.Errorf("%q %q: expected %s, got %+v", c.typ, c.arg, c.want, res)
		}
	}
}

func TestReduce_ShowIgnoresLock(t *testing.T) {
	cur := Acquire(DefaultRecord(), t0)
	res := newReducer().Reduce(cur, SubShow, "", t0)
	if res.Outcome != Success || res.Reason != ReasonShow || res.Changed {
		t.Errorf("expected show success while locked, got %+v", res)
	}
}

func TestReduce_LockBoundary(t *testing.T) {
	rd := newReducer()
	cur := Acquire(DefaultRecord(), t0)

	at := rd.Reduce(cur, SubLimit, "8", t0.Add(testTTL))
	if at.Reason != ReasonLocked {
		t.Errorf("at t+310 expected locked, got %s", at.Reason)
	}
	after := rd.Reduce(cur, SubLimit, "8", t0.Add(testTTL+time.Second))
	if after.Outcome != Success {
		t.Errorf("at t+311 expected success, got %s", after.Reason)
	}
}

func TestReduce_WithoutLockOnEdit(t *testing.T) {
	rd := Reducer{LockTTL: testTTL}
	res := rd.Reduce(DefaultRecord(), SubLimit, "15", t0)
	if res.Record.Lock != 0 {
		t.Errorf("expected lock untouched, got %d", res.Record.Lock)
	}
	again := rd.Reduce(res.Record, SubTime, "30", t0.Add(time.Second))
	if again.Outcome != Success {
		t.Errorf("expected second edit accepted, got %s", again.Reason)
	}
}

func TestReason_LangKey(t *testing.T) {
	if ReasonLocked.LangKey() != "config_locked" {
		t.Errorf("unexpected key %q", ReasonLocked.LangKey())
	}
}
