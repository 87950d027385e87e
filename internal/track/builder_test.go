package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfleet/balloon-quake-aggregation/internal/geo"
)

func hourFrame(tag string, at time.Time, records ...any) Frame {
	return Frame{Tag: tag, At: at, Records: records}
}

func objRecord(id string, lat, lon float64, ts time.Time) map[string]any {
	return map[string]any{
		"id":        id,
		"lat":       lat,
		"lon":       lon,
		"timestamp": ts.Format(time.RFC3339),
	}
}

func objRecordAlt(id string, lat, lon, alt float64, ts time.Time) map[string]any {
	r := objRecord(id, lat, lon, ts)
	r["altitude"] = alt
	return r
}

func TestBuildGroupsByIdentifier(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		hourFrame("02.json", base,
			objRecord("a", 10, 10, base),
			objRecord("b", 20, 20, base),
		),
		hourFrame("01.json", base.Add(time.Hour),
			objRecord("a", 11, 10, base.Add(time.Hour)),
		),
	}

	tracks := Build(frames)
	require.Len(t, tracks, 2)

	byID := make(map[string]Track)
	for _, tr := range tracks {
		byID[tr.ID] = tr
	}
	assert.Equal(t, 2, byID["a"].SampleCount)
	assert.Equal(t, 1, byID["b"].SampleCount)
}

func TestBuildSortsSamplesChronologically(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	// Samples arrive out of fetch order: t+2h, t, t+1h.
	frames := []Frame{
		hourFrame("00.json", base.Add(2*time.Hour), objRecord("x", 3, 3, base.Add(2*time.Hour))),
		hourFrame("02.json", base, objRecord("x", 1, 1, base)),
		hourFrame("01.json", base.Add(time.Hour), objRecord("x", 2, 2, base.Add(time.Hour))),
	}

	tracks := Build(frames)
	require.Len(t, tracks, 1)

	tr := tracks[0]
	require.Len(t, tr.Samples, 3)
	assert.Equal(t, 1.0, tr.Samples[0].Latitude)
	assert.Equal(t, 2.0, tr.Samples[1].Latitude)
	assert.Equal(t, 3.0, tr.Samples[2].Latitude)
	assert.Equal(t, base, tr.FirstSeen)
	assert.Equal(t, base.Add(2*time.Hour), tr.LastSeen)
	assert.Equal(t, 3.0, tr.Latest.Latitude)
}

func TestBuildStableSortForEqualTimestamps(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		hourFrame("00.json", base,
			objRecord("x", 1, 1, base),
			objRecord("x", 2, 2, base),
		),
	}

	tracks := Build(frames)
	require.Len(t, tracks, 1)
	assert.Equal(t, 1.0, tracks[0].Samples[0].Latitude)
	assert.Equal(t, 2.0, tracks[0].Samples[1].Latitude)
}

func TestBuildCumulativeDistanceSumsConsecutivePairs(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		hourFrame("02.json", base, objRecord("x", 0, 0, base)),
		hourFrame("01.json", base.Add(time.Hour), objRecord("x", 0, 1, base.Add(time.Hour))),
		hourFrame("00.json", base.Add(2*time.Hour), objRecord("x", 1, 1, base.Add(2*time.Hour))),
	}

	tracks := Build(frames)
	require.Len(t, tracks, 1)

	want := geo.DistanceKm(0, 0, 0, 1) + geo.DistanceKm(0, 1, 1, 1)
	direct := geo.DistanceKm(0, 0, 1, 1)
	assert.InDelta(t, want, tracks[0].DistanceKm, 1e-9)
	assert.Greater(t, tracks[0].DistanceKm, direct)
}

func TestBuildAltitudeDelta(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)

	t.Run("both ends have altitude", func(t *testing.T) {
		frames := []Frame{
			hourFrame("01.json", base, objRecordAlt("x", 0, 0, 1000, base)),
			hourFrame("00.json", base.Add(time.Hour), objRecordAlt("x", 0, 1, 1500, base.Add(time.Hour))),
		}
		tracks := Build(frames)
		require.Len(t, tracks, 1)
		assert.Equal(t, 500.0, tracks[0].AltitudeDelta)
	})

	t.Run("missing latest altitude counts as zero", func(t *testing.T) {
		frames := []Frame{
			hourFrame("01.json", base, objRecordAlt("x", 0, 0, 1000, base)),
			hourFrame("00.json", base.Add(time.Hour), objRecord("x", 0, 1, base.Add(time.Hour))),
		}
		tracks := Build(frames)
		require.Len(t, tracks, 1)
		assert.Equal(t, -1000.0, tracks[0].AltitudeDelta)
	})
}

func TestBuildDropsInvalidRecordsSilently(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		hourFrame("00.json", base,
			objRecord("ok", 5, 5, base),
			map[string]any{"id": "broken", "altitude": 9000.0},
			"not even an object",
		),
	}

	tracks := Build(frames)
	require.Len(t, tracks, 1)
	assert.Equal(t, "ok", tracks[0].ID)
}

func TestBuildEmptyFrames(t *testing.T) {
	assert.Empty(t, Build(nil))
	assert.Empty(t, Build([]Frame{{Tag: "00.json"}}))
}

func TestBuildAnonymousArrayRecords(t *testing.T) {
	base := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	frames := []Frame{
		hourFrame("00.json", base, []any{44.5, -103.2, 17000.0}, []any{45.0, -104.0, 16000.0}),
	}

	tracks := Build(frames)
	// Anonymous records have frame+index identity, so each is its own track.
	require.Len(t, tracks, 2)
	assert.Equal(t, "00.json#0", tracks[0].ID)
	assert.Equal(t, "00.json#1", tracks[1].ID)
	assert.Equal(t, 1, tracks[0].SampleCount)
}
