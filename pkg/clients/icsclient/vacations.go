package icsclient

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// Client parses out-of-office calendars exported as iCalendar (RFC 5545) files.
// Vacation events are expected to carry the analyst name in the summary,
// e.g. "Jane Doe OOO" or "Jane Doe - Vacation".
type Client struct {
	logger *zap.Logger
}

// NewClient creates a new ICS calendar client
func NewClient(logger *zap.Logger) *Client {
	return &Client{logger: logger}
}

// oooMarkers are summary suffixes that identify an event as a vacation entry
var oooMarkers = []string{"ooo", "out of office", "vacation", "pto", "leave"}

// LoadVacations reads an ICS file from disk and returns vacation intervals
// keyed by the analyst name found in each event summary
func (c *Client) LoadVacations(path string) (map[string][]model.DateInterval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	return c.ParseVacations(f)
}

// ParseVacations parses iCalendar content and extracts vacation intervals per analyst.
// Events whose summary names multiple people (joined with "+") are skipped, as are
// events without a recognizable out-of-office marker.
func (c *Client) ParseVacations(r io.Reader) (map[string][]model.DateInterval, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	vacations := make(map[string][]model.DateInterval)
	skipped := 0

	for _, evt := range cal.Events() {
		name, ok := analystNameFromSummary(evt)
		if !ok {
			skipped++
			continue
		}

		interval, err := eventInterval(evt)
		if err != nil {
			c.logger.Warn("Skipping event with unparseable dates",
				zap.String("analyst", name),
				zap.Error(err))
			skipped++
			continue
		}

		vacations[name] = append(vacations[name], interval)
	}

	// Collapse overlapping or adjacent entries so OnVacation checks stay cheap
	for name, intervals := range vacations {
		vacations[name] = mergeIntervals(intervals)
	}

	c.logger.Info("Parsed vacation calendar",
		zap.Int("analysts", len(vacations)),
		zap.Int("skipped_events", skipped))

	return vacations, nil
}

// analystNameFromSummary extracts the analyst name from an event summary.
// Returns false for empty summaries, group events ("A + B OOO"), and events
// that do not carry an out-of-office marker.
func analystNameFromSummary(evt *ics.VEvent) (string, bool) {
	prop := evt.GetProperty(ics.ComponentPropertySummary)
	if prop == nil {
		return "", false
	}

	summary := strings.TrimSpace(prop.Value)
	if summary == "" {
		return "", false
	}

	// Group events cannot be attributed to a single analyst
	if strings.Contains(summary, "+") {
		return "", false
	}

	lower := strings.ToLower(summary)
	for _, marker := range oooMarkers {
		idx := strings.LastIndex(lower, marker)
		if idx < 0 {
			continue
		}

		name := strings.TrimSpace(summary[:idx])
		name = strings.TrimRight(name, "-–:")
		name = strings.TrimSpace(name)
		if name == "" {
			return "", false
		}
		return name, true
	}

	return "", false
}

// eventInterval converts an event's DTSTART/DTEND into an inclusive date interval.
// All-day events use an exclusive DTEND per RFC 5545, so the end date is pulled
// back by one day.
func eventInterval(evt *ics.VEvent) (model.DateInterval, error) {
	start, allDayStart, err := eventDate(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return model.DateInterval{}, err
	}

	end, allDayEnd, err := eventDate(evt, ics.ComponentPropertyDtEnd)
	if err != nil {
		// No DTEND means a single-day entry
		return model.DateInterval{Start: start, End: start}, nil
	}

	if allDayStart && allDayEnd {
		end = end.AddDate(0, 0, -1)
	}
	if end.Before(start) {
		end = start
	}

	return model.DateInterval{Start: start, End: end}, nil
}

// eventDate parses a date property, reporting whether it was a date-only value
func eventDate(evt *ics.VEvent, propName ics.ComponentProperty) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}

	val := prop.Value
	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return truncateToDate(t), false, nil
	}
	if t, err := time.Parse("20060102T150405", val); err == nil {
		return truncateToDate(t), false, nil
	}

	return time.Time{}, false, fmt.Errorf("unrecognized date value %q", val)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// mergeIntervals sorts intervals and merges any that overlap or touch
func mergeIntervals(intervals []model.DateInterval) []model.DateInterval {
	if len(intervals) <= 1 {
		return intervals
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := []model.DateInterval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		// Adjacent days merge too: an interval starting the day after the
		// previous one ends is a single continuous absence
		if !iv.Start.After(last.End.AddDate(0, 0, 1)) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}
