package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-status-backend/internal/model"
)

var dayStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return dayStart.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func atPtr(hour, min int) *time.Time {
	t := at(hour, min)
	return &t
}

func interval(id string, start time.Time, end *time.Time, eff model.UsageStatus) Interval {
	return Interval{ID: id, LogID: id, AssetID: "chamber-1", StartTime: start, EndTime: end, Effective: eff}
}

func trackOf(t *testing.T, layout Layout, id string) int {
	t.Helper()
	for _, p := range layout.Placements {
		if p.ID == id {
			return p.Track
		}
	}
	t.Fatalf("interval %s not placed", id)
	return -1
}

func TestAssignTracksReusesFreedTrack(t *testing.T) {
	// [9:00-10:00], [9:30-10:30], [10:00-11:00]: the third bar fits back
	// on track 0 because the first has ended by 10:00.
	now := at(12, 0)
	layout := AssignTracks([]Interval{
		interval("a", at(9, 0), atPtr(10, 0), model.UsageCompleted),
		interval("b", at(9, 30), atPtr(10, 30), model.UsageCompleted),
		interval("c", at(10, 0), atPtr(11, 0), model.UsageCompleted),
	}, now)

	assert.Equal(t, 2, layout.MaxTracks)
	assert.Equal(t, 0, trackOf(t, layout, "a"))
	assert.Equal(t, 1, trackOf(t, layout, "b"))
	assert.Equal(t, 0, trackOf(t, layout, "c"))
}

func TestAssignTracksNoOverlapOnSameTrack(t *testing.T) {
	now := at(23, 0)
	intervals := []Interval{
		interval("a", at(8, 0), atPtr(12, 0), model.UsageCompleted),
		interval("b", at(9, 0), atPtr(9, 30), model.UsageCompleted),
		interval("c", at(9, 15), atPtr(13, 0), model.UsageCompleted),
		interval("d", at(12, 0), atPtr(14, 0), model.UsageCompleted),
		interval("e", at(13, 30), atPtr(15, 0), model.UsageCompleted),
	}
	layout := AssignTracks(intervals, now)

	ends := make(map[string]time.Time)
	starts := make(map[string]time.Time)
	for _, iv := range intervals {
		starts[iv.ID] = iv.StartTime
		ends[iv.ID] = *iv.EndTime
	}
	for i, p := range layout.Placements {
		for j, q := range layout.Placements {
			if i >= j || p.Track != q.Track {
				continue
			}
			overlaps := starts[p.ID].Before(ends[q.ID]) && starts[q.ID].Before(ends[p.ID])
			assert.False(t, overlaps, "%s and %s overlap on track %d", p.ID, q.ID, p.Track)
		}
	}

	// Max mutual overlap (clique) at 09:15 is {a, b, c}.
	assert.Equal(t, 3, layout.MaxTracks)
}

func TestAssignTracksShorterIntervalWinsTie(t *testing.T) {
	now := at(23, 0)
	layout := AssignTracks([]Interval{
		interval("long", at(9, 0), atPtr(18, 0), model.UsageCompleted),
		interval("short", at(9, 0), atPtr(10, 0), model.UsageCompleted),
	}, now)

	assert.Equal(t, 0, trackOf(t, layout, "short"))
	assert.Equal(t, 1, trackOf(t, layout, "long"))
}

func TestAssignTracksOpenEnded(t *testing.T) {
	now := at(11, 0)

	t.Run("running interval grows to now", func(t *testing.T) {
		layout := AssignTracks([]Interval{
			interval("open", at(9, 0), nil, model.UsageInProgress),
			interval("next", at(10, 30), atPtr(12, 0), model.UsageNotStarted),
		}, now)
		// The open interval ends at "now" (11:00), so 10:30 collides.
		assert.Equal(t, 2, layout.MaxTracks)
	})

	t.Run("not-started open interval spans one day", func(t *testing.T) {
		layout := AssignTracks([]Interval{
			interval("open", at(9, 0), nil, model.UsageNotStarted),
			interval("tomorrow", at(9, 0).Add(25*time.Hour), atPtr(11, 0), model.UsageNotStarted),
		}, now)
		assert.Equal(t, 1, layout.MaxTracks, "one-day span frees the track before the next day's bar")
	})
}

func TestAssignTracksMalformedIntervalClamped(t *testing.T) {
	now := at(12, 0)
	// End before start: clamped to a minimum positive span, never dropped.
	layout := AssignTracks([]Interval{
		interval("bad", at(10, 0), atPtr(9, 0), model.UsageCompleted),
	}, now)
	require.Len(t, layout.Placements, 1)
	assert.Equal(t, 1, layout.MaxTracks)
}

func TestAssignTracksEmpty(t *testing.T) {
	layout := AssignTracks(nil, at(12, 0))
	assert.Empty(t, layout.Placements)
	assert.Zero(t, layout.MaxTracks)
}

func TestExpandLogs(t *testing.T) {
	now := at(9, 30)
	logs := []model.UsageLog{
		{
			ID: "log-1", AssetID: "chamber-1", User: "alice",
			StartTime: at(9, 0), EndTime: atPtr(10, 0),
			Status:    model.UsageInProgress,
			ConfigIDs: model.StringList{"cfg-a", "cfg-b"},
		},
		{
			ID: "log-2", AssetID: "chamber-2", User: "bob",
			StartTime: at(14, 0), EndTime: atPtr(16, 0),
			Status: model.UsageNotStarted,
		},
	}

	intervals := ExpandLogs(logs, now)
	require.Len(t, intervals, 3)

	assert.Equal(t, "log-1-cfg-a", intervals[0].ID)
	assert.Equal(t, "log-1-cfg-b", intervals[1].ID)
	assert.Equal(t, "log-1", intervals[0].LogID)
	assert.Equal(t, model.UsageInProgress, intervals[0].Effective)
	assert.Equal(t, intervals[0].StartTime, intervals[1].StartTime, "fanned rows share the interval")

	assert.Equal(t, "log-2", intervals[2].ID)
	assert.Empty(t, intervals[2].ConfigID)
	assert.Equal(t, model.UsageNotStarted, intervals[2].Effective)
}

func TestLayoutByAsset(t *testing.T) {
	now := at(12, 0)
	intervals := []Interval{
		interval("a", at(9, 0), atPtr(10, 0), model.UsageCompleted),
		{ID: "x", LogID: "x", AssetID: "chamber-2", StartTime: at(9, 0), EndTime: atPtr(10, 0), Effective: model.UsageCompleted},
		interval("b", at(9, 30), atPtr(10, 30), model.UsageCompleted),
	}

	layouts := LayoutByAsset(intervals, now)
	require.Len(t, layouts, 2)
	assert.Equal(t, 2, layouts["chamber-1"].MaxTracks)
	assert.Equal(t, 1, layouts["chamber-2"].MaxTracks)
}
