package noflood

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultRecord_IsValidDefault(t *testing.T) {
	r := DefaultRecord()
	if !r.Default || r.Lock != 0 {
		t.Errorf("unexpected defaults: %+v", r)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("default record invalid: %v", err)
	}
}

func TestDefaultRecord_ReturnsCopy(t *testing.T) {
	r := DefaultRecord()
	r.Limit = 19
	if DefaultRecord().Limit == 19 {
		t.Error("DefaultRecord must not expose the shared value")
	}
}

func TestRecord_Validate(t *testing.T) {
	bad := []Record{
		{Limit: 1, Time: 10},
		{Limit: 21, Time: 10},
		{Limit: 5, Time: 47},
		{Limit: 5, Time: 65},
		{Default: true, Limit: 6, Time: 10, Delete: true},
	}
	for _, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("expected %+v to be invalid", r)
		}
	}
	ok := Record{Limit: 20, Time: 60, Purge: true}
	if err := ok.Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}
}

func TestSameSettings_IgnoresLock(t *testing.T) {
	a := DefaultRecord()
	b := Acquire(DefaultRecord(), time.Unix(100, 0))
	if !SameSettings(a, b) {
		t.Error("lock must not affect settings equality")
	}
	b.Purge = true
	if SameSettings(a, b) {
		t.Error("purge difference must be detected")
	}
}

func TestRecord_Text(t *testing.T) {
	text := DefaultRecord().Text()
	for _, want := range []string{"Default: `Yes`", "Message Limit: `5`", "Time Window: `10s`", "Purge Messages: `No`"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestUnlocked(t *testing.T) {
	r := Acquire(DefaultRecord(), time.Unix(1000, 0))
	if Unlocked(r, time.Unix(1310, 0), 310*time.Second) {
		t.Error("expected locked at exactly ttl")
	}
	if !Unlocked(r, time.Unix(1311, 0), 310*time.Second) {
		t.Error("expected unlocked after ttl")
	}
	if !Unlocked(DefaultRecord(), time.Unix(1000, 0), 310*time.Second) {
		t.Error("expected zero lock to be unlocked")
	}
}
