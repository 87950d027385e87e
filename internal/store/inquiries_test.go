package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*InquiryStore, *clockwork.FakeClock) {
	t.Helper()
	clk := clockwork.NewFakeClockAt(time.Date(2026, 4, 12, 10, 0, 0, 0, time.UTC))
	s, err := NewInquiryStore(filepath.Join(t.TempDir(), "inquiries.db"), clk)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clk
}

func TestSaveGeneratesIdentifierAndInstant(t *testing.T) {
	s, clk := newTestStore(t)

	inq, err := s.Save("is balloon WB-0042 drifting toward the quake zone?", "ops@example.org")
	require.NoError(t, err)
	assert.NotEmpty(t, inq.ID)
	assert.Equal(t, clk.Now().UTC(), inq.ReceivedAt)
	assert.Equal(t, "ops@example.org", inq.Contact)
}

func TestSaveThenGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	saved, err := s.Save("hello", "someone@example.org")
	require.NoError(t, err)

	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestGetMissReturnsNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentNewestFirst(t *testing.T) {
	s, clk := newTestStore(t)

	first, err := s.Save("first", "a@example.org")
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := s.Save("second", "b@example.org")
	require.NoError(t, err)

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
}

func TestSavedIdentifiersAreUnique(t *testing.T) {
	s, _ := newTestStore(t)

	a, err := s.Save("m", "c@example.org")
	require.NoError(t, err)
	b, err := s.Save("m", "c@example.org")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
