package domain

import (
	"database/sql/driver"
	"fmt"
	"sync"
	"time"
)

// VersionTimeFormat is the literal timestamp layout stamped onto rendered
// artifacts, returned by the API and persisted for version columns. Seven
// fractional digits, always UTC, so two stamps for the same instant are
// byte-for-byte equal, consumers can compare them as plain strings, and the
// database orders version columns correctly as fixed-width text.
const VersionTimeFormat = "2006-01-02T15:04:05.0000000Z"

// versionResolution is the finest step VersionTimeFormat can represent.
const versionResolution = 100 * time.Nanosecond

// FormatVersion renders a version timestamp in the fixed artifact format.
func FormatVersion(t time.Time) string {
	return t.UTC().Format(VersionTimeFormat)
}

// ParseVersion parses a timestamp previously produced by FormatVersion.
func ParseVersion(s string) (time.Time, error) {
	return time.Parse(VersionTimeFormat, s)
}

// Version is a content or generation version timestamp. It persists in the
// fixed VersionTimeFormat rather than the driver's native time encoding.
type Version struct {
	time.Time
}

// NewVersion truncates t to the version resolution.
func NewVersion(t time.Time) Version {
	return Version{t.UTC().Truncate(versionResolution)}
}

// String returns the fixed-format representation.
func (v Version) String() string {
	return FormatVersion(v.Time)
}

// Value implements driver.Valuer.
func (v Version) Value() (driver.Value, error) {
	return FormatVersion(v.Time), nil
}

// Scan implements sql.Scanner.
func (v *Version) Scan(value interface{}) error {
	switch x := value.(type) {
	case nil:
		v.Time = time.Time{}
		return nil
	case string:
		t, err := ParseVersion(x)
		if err != nil {
			return err
		}
		v.Time = t
		return nil
	case []byte:
		t, err := ParseVersion(string(x))
		if err != nil {
			return err
		}
		v.Time = t
		return nil
	case time.Time:
		v.Time = x.UTC().Truncate(versionResolution)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Version", value)
	}
}

// MarshalJSON renders the fixed format in API payloads.
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(`"` + FormatVersion(v.Time) + `"`), nil
}

// UnmarshalJSON parses the fixed format.
func (v *Version) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid version literal %s", s)
	}
	t, err := ParseVersion(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	v.Time = t
	return nil
}

// VersionStamper issues strictly increasing version timestamps. Two calls in
// the same wall-clock instant are still totally ordered: the second is bumped
// one resolution step past the first, so "changed since X" queries never tie.
type VersionStamper struct {
	mu   sync.Mutex
	last time.Time
}

// NewVersionStamper creates a VersionStamper.
func NewVersionStamper() *VersionStamper {
	return &VersionStamper{}
}

// Next returns the next version. Always strictly after every previously
// returned or observed value.
func (s *VersionStamper) Next() Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(versionResolution)
	if !now.After(s.last) {
		now = s.last.Add(versionResolution)
	}
	s.last = now
	return Version{now}
}

// Observe tells the stamper about a version loaded from storage so that
// future stamps stay ahead of it (e.g. after restart).
func (s *VersionStamper) Observe(v Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := v.UTC()
	if t.After(s.last) {
		s.last = t
	}
}
