package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"equipment-status-backend/internal/holiday"
	"equipment-status-backend/internal/store"
	"equipment-status-backend/internal/timeline"
)

// timelineResponse is the render-ready payload for the scrolling
// equipment view: classified day columns plus per-asset track layouts.
type timelineResponse struct {
	Days           []timeline.DayHeader       `json:"days"`
	Layouts        map[string]timeline.Layout `json:"layouts"`
	HolidayWarning string                     `json:"holidayWarning,omitempty"`
}

// GetTimeline handles the GET /api/timeline request. The window centers
// on `date` (default: now) and spans days_before/days_after around it;
// defaults come from config.
func (h *Handler) GetTimeline(c *gin.Context) {
	now := h.Now()

	ref := now
	if dateParam := c.Query("date"); dateParam != "" {
		parsed, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'date', use yyyy-MM-dd"})
			return
		}
		// Anchor mid-day so the reference is unambiguously past the
		// day-start boundary.
		ref = parsed.Add(12 * time.Hour)
	}

	daysBefore := queryInt(c, "days_before", h.timeline.DaysBefore)
	daysAfter := queryInt(c, "days_after", h.timeline.DaysAfter)
	if daysBefore < 0 || daysAfter < 0 || daysBefore+daysAfter > 366 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window out of range"})
		return
	}

	days := timeline.Window(ref, daysBefore, daysAfter, h.timeline.DayStartHour)

	table, warning := h.holidayTable(days)
	headers := timeline.ClassifyWindow(days, table)

	// Only logs overlapping the window are fetched; an open-ended log
	// always overlaps (it may still be running).
	windowStart := days[0]
	windowEnd := days[len(days)-1].AddDate(0, 0, 1)
	logs, err := h.store.ListUsageLogs(c.Request.Context(), store.UsageLogFilter{
		StartBefore: windowEnd,
		EndAfter:    windowStart,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve usage logs"})
		return
	}
	intervals := timeline.ExpandLogs(logs, now)

	c.JSON(http.StatusOK, timelineResponse{
		Days:           headers,
		Layouts:        timeline.LayoutByAsset(intervals, now),
		HolidayWarning: warning,
	})
}

// holidayTable fetches the holiday tables covering the window's years.
// Failures degrade to day-of-week classification with a warning rather
// than failing the whole view.
func (h *Handler) holidayTable(days []time.Time) (holiday.Table, string) {
	if h.holidays == nil || len(days) == 0 {
		return holiday.Table{}, ""
	}
	startYear := days[0].Year()
	endYear := days[len(days)-1].Year()
	table, err := h.holidays.FetchRange(h.timeline.Region, startYear, endYear)
	if err != nil {
		log.Printf("Holiday lookup degraded: %v", err)
		return table, "holiday data unavailable for part of the window"
	}
	return table, ""
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
