package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion_FixedWidth(t *testing.T) {
	// A whole-second instant must still carry all seven fractional digits.
	at := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	s := FormatVersion(at)

	assert.Equal(t, "2024-03-09T14:30:00.0000000Z", s)
	assert.Len(t, s, 28)
}

func TestFormatVersion_AlwaysUTC(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)

	assert.Equal(t, "2024-03-09T14:30:00.0000000Z", FormatVersion(at))
}

func TestParseVersion_Roundtrip(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 30, 1, 234567800, time.UTC)
	parsed, err := ParseVersion(FormatVersion(at))

	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestVersion_ScanString(t *testing.T) {
	var v Version
	require.NoError(t, v.Scan("2024-03-09T14:30:00.0000001Z"))
	assert.Equal(t, "2024-03-09T14:30:00.0000001Z", v.String())
}

func TestVersion_ValueIsText(t *testing.T) {
	v := NewVersion(time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC))
	val, err := v.Value()

	require.NoError(t, err)
	assert.Equal(t, "2024-03-09T14:30:00.0000000Z", val)
}

func TestVersion_JSONRoundtrip(t *testing.T) {
	v := NewVersion(time.Date(2024, 3, 9, 14, 30, 1, 500, time.UTC))
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var back Version
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v.String(), back.String())
}

func TestVersionStamper_StrictlyIncreasing(t *testing.T) {
	stamper := NewVersionStamper()

	prev := stamper.Next()
	for i := 0; i < 1000; i++ {
		next := stamper.Next()
		assert.True(t, next.After(prev.Time), "stamp %d not after its predecessor", i)
		prev = next
	}
}

func TestVersionStamper_OrderAsStrings(t *testing.T) {
	// String comparison must agree with time comparison, since the store
	// compares versions lexicographically.
	stamper := NewVersionStamper()

	prev := stamper.Next().String()
	for i := 0; i < 100; i++ {
		next := stamper.Next().String()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestVersionStamper_ObserveSeedsFuture(t *testing.T) {
	stamper := NewVersionStamper()
	future := NewVersion(time.Now().UTC().Add(time.Hour))
	stamper.Observe(future)

	next := stamper.Next()
	assert.True(t, next.After(future.Time))
}

func TestVersionStamper_ObserveOlderIgnored(t *testing.T) {
	stamper := NewVersionStamper()
	first := stamper.Next()
	stamper.Observe(NewVersion(time.Now().UTC().Add(-time.Hour)))

	assert.True(t, stamper.Next().After(first.Time))
}
