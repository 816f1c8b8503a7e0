package usage

import (
	"errors"
	"strings"
	"time"
)

// Device quota defaults.
const (
	DefaultLimit  = 2
	DefaultWindow = 7 * 24 * time.Hour
)

// ErrLimitReached is returned by Tracker.Begin when the window is full.
var ErrLimitReached = errors.New("demo limit reached")

// Quota caps starts within a rolling window.
type Quota struct {
	Limit  int
	Window time.Duration
}

// DefaultQuota is 2 starts per 7 days.
func DefaultQuota() Quota {
	return Quota{Limit: DefaultLimit, Window: DefaultWindow}
}

// Remaining counts how many more starts fit at now.
func (q Quota) Remaining(starts []time.Time, now time.Time) int {
	used := 0
	for _, ts := range starts {
		if now.Sub(ts) < q.Window {
			used++
		}
	}
	if used >= q.Limit {
		return 0
	}
	return q.Limit - used
}

// Allow reports whether another start fits at now.
func (q Quota) Allow(starts []time.Time, now time.Time) bool {
	return q.Remaining(starts, now) > 0
}

// NextAvailable is when the oldest counted start leaves the window, or
// the zero time when a start is already allowed.
func (q Quota) NextAvailable(starts []time.Time, now time.Time) time.Time {
	if q.Allow(starts, now) {
		return time.Time{}
	}
	var oldest time.Time
	for _, ts := range starts {
		if now.Sub(ts) < q.Window && (oldest.IsZero() || ts.Before(oldest)) {
			oldest = ts
		}
	}
	return oldest.Add(q.Window)
}

// Tracker applies a Quota to one bucket of a Store.
type Tracker struct {
	store  Store
	quota  Quota
	bucket string
	bypass map[string]struct{}
	now    func() time.Time
}

// NewTracker creates a tracker. Emails in bypass skip the quota entirely;
// they are compared trimmed and lowercased.
func NewTracker(store Store, quota Quota, bucket string, bypass []string) *Tracker {
	t := &Tracker{
		store:  store,
		quota:  quota,
		bucket: bucket,
		bypass: make(map[string]struct{}, len(bypass)),
		now:    time.Now,
	}
	for _, e := range bypass {
		if e = normalizeEmail(e); e != "" {
			t.bypass[e] = struct{}{}
		}
	}
	return t
}

// Bypassed reports whether email is on the allow-list.
func (t *Tracker) Bypassed(email string) bool {
	_, ok := t.bypass[normalizeEmail(email)]
	return ok
}

// Begin checks the quota and records a start. Allow-listed emails are
// neither checked nor recorded.
func (t *Tracker) Begin(email string) error {
	if t.Bypassed(email) {
		return nil
	}
	now := t.now()
	starts, err := t.store.Starts(t.bucket)
	if err != nil {
		return err
	}
	if !t.quota.Allow(starts, now) {
		return ErrLimitReached
	}
	return t.store.Record(t.bucket, now)
}

// Remaining reports the starts left for this bucket.
func (t *Tracker) Remaining() (int, error) {
	starts, err := t.store.Starts(t.bucket)
	if err != nil {
		return 0, err
	}
	return t.quota.Remaining(starts, t.now()), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
