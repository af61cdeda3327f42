// Package timeline produces the render-ready layout for the scrolling
// multi-week equipment view: usage logs fanned out into display
// intervals, intervals packed into non-overlapping tracks, and day
// headers classified against the holiday table. Everything here is a
// pure read; nothing mutates stored state.
package timeline

import (
	"sort"
	"time"

	"equipment-status-backend/internal/model"
	"equipment-status-backend/internal/status"
)

// openEndedSpan is the assumed display length of an open-ended interval
// that is not currently running.
const openEndedSpan = 24 * time.Hour

// minSpan is the clamp applied to malformed (start after end) intervals
// so the layout never sees a non-positive duration.
const minSpan = time.Minute

// Interval is one display row derived from a usage log: one per
// selected sub-resource config, or a single default row.
type Interval struct {
	ID        string            `json:"id"`
	LogID     string            `json:"logId"`
	AssetID   string            `json:"assetId"`
	ConfigID  string            `json:"configId,omitempty"`
	User      string            `json:"user"`
	StartTime time.Time         `json:"startTime"`
	EndTime   *time.Time        `json:"endTime,omitempty"`
	Effective model.UsageStatus `json:"effectiveStatus"`
}

// Placement is an interval with its assigned display lane.
type Placement struct {
	Interval
	Track int `json:"track"`
}

// Layout is the track assignment for one asset's intervals. MaxTracks
// sizes the asset's row height in the view.
type Layout struct {
	Placements []Placement `json:"placements"`
	MaxTracks  int         `json:"maxTracks"`
}

// ExpandLogs fans usage logs out into display intervals. A log with N
// selected configs yields N intervals sharing the same time window;
// otherwise one interval carries the whole log. Effective status is
// resolved here, once, against the supplied instant.
func ExpandLogs(logs []model.UsageLog, now time.Time) []Interval {
	intervals := make([]Interval, 0, len(logs))
	for i := range logs {
		log := &logs[i]
		eff := status.Resolve(log, now)
		if len(log.ConfigIDs) == 0 {
			intervals = append(intervals, Interval{
				ID:        log.ID,
				LogID:     log.ID,
				AssetID:   log.AssetID,
				User:      log.User,
				StartTime: log.StartTime,
				EndTime:   log.EndTime,
				Effective: eff,
			})
			continue
		}
		for _, configID := range log.ConfigIDs {
			intervals = append(intervals, Interval{
				ID:        log.ID + "-" + configID,
				LogID:     log.ID,
				AssetID:   log.AssetID,
				ConfigID:  configID,
				User:      log.User,
				StartTime: log.StartTime,
				EndTime:   log.EndTime,
				Effective: eff,
			})
		}
	}
	return intervals
}

// effectiveEnd is the end instant used for overlap decisions. An
// open-ended interval that is running (or overdue) keeps growing until
// closed, so it ends "now"; any other open-ended interval is shown as a
// fixed one-day span. Malformed windows are clamped to a minimum
// positive duration rather than rejected.
func effectiveEnd(iv *Interval, now time.Time) time.Time {
	var end time.Time
	switch {
	case iv.EndTime != nil:
		end = *iv.EndTime
	case iv.Effective == model.UsageInProgress || iv.Effective == model.UsageOverdue:
		end = now
	default:
		end = iv.StartTime.Add(openEndedSpan)
	}
	if !end.After(iv.StartTime) {
		end = iv.StartTime.Add(minSpan)
	}
	return end
}

// AssignTracks packs intervals into the minimum number of display lanes
// such that no two intervals on the same lane overlap in time. Greedy
// first-fit over intervals sorted by start time is optimal for interval
// graphs, so no backtracking is needed. Shorter intervals win start-time
// ties so long-running items don't block more lanes than necessary.
// The result depends on "now" for open-ended intervals and must be
// recomputed on every render pass.
func AssignTracks(intervals []Interval, now time.Time) Layout {
	if len(intervals) == 0 {
		return Layout{Placements: []Placement{}}
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		di := effectiveEnd(&sorted[i], now).Sub(sorted[i].StartTime)
		dj := effectiveEnd(&sorted[j], now).Sub(sorted[j].StartTime)
		return di < dj
	})

	// With starts sorted ascending and lanes kept overlap-free, the most
	// recently placed interval on a lane always has that lane's largest
	// end, so one end per lane suffices for the overlap test.
	var laneEnds []time.Time
	placements := make([]Placement, 0, len(sorted))

	for i := range sorted {
		iv := &sorted[i]
		ivStart := iv.StartTime
		ivEnd := effectiveEnd(iv, now)

		track := -1
		for lane, laneEnd := range laneEnds {
			// True overlap: newStart < laneEnd. The symmetric half of the
			// test holds by construction (lane entries start earlier).
			if !ivStart.Before(laneEnd) {
				track = lane
				break
			}
		}
		if track == -1 {
			track = len(laneEnds)
			laneEnds = append(laneEnds, ivEnd)
		} else {
			laneEnds[track] = ivEnd
		}

		placements = append(placements, Placement{Interval: *iv, Track: track})
	}

	return Layout{Placements: placements, MaxTracks: len(laneEnds)}
}

// LayoutByAsset groups intervals by asset and assigns tracks per asset.
func LayoutByAsset(intervals []Interval, now time.Time) map[string]Layout {
	byAsset := make(map[string][]Interval)
	for _, iv := range intervals {
		byAsset[iv.AssetID] = append(byAsset[iv.AssetID], iv)
	}
	layouts := make(map[string]Layout, len(byAsset))
	for assetID, ivs := range byAsset {
		layouts[assetID] = AssignTracks(ivs, now)
	}
	return layouts
}
