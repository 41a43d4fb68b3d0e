package noflood

import "time"

// Unlocked reports whether the group may be changed at now: the last lock
// must be older than ttl. There is no unlock; the window simply lapses.
func Unlocked(r Record, now time.Time, ttl time.Duration) bool {
	return now.Unix()-r.Lock > int64(ttl/time.Second)
}

// Acquire stamps the lock. Callers persist the returned record before any
// side effect that relies on holding it.
func Acquire(r Record, now time.Time) Record {
	r.Lock = now.Unix()
	return r
}
