// Package schedule normalizes heterogeneous date and time expressions into
// a canonical appointment interval. Parsing is strictly best-effort: bad
// input degrades to a partial result or nil, never an error.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oakline/callbridge/internal/models"
)

const defaultDurationMin = 60

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// Parse combines a date expression and a time expression into a Schedule.
// Returns nil when either is absent or unparseable. The duration defaults
// to 60 minutes; end degrades to nil rather than failing the whole parse.
func Parse(dateStr, timeStr string, durationMin int, service string, loc *time.Location) *models.Schedule {
	if loc == nil {
		loc = time.Local
	}
	day, ok := parseDate(strings.TrimSpace(dateStr), loc)
	if !ok {
		return nil
	}
	hour, minute, ok := normalizeTime(timeStr)
	if !ok {
		return nil
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	if durationMin <= 0 {
		durationMin = defaultDurationMin
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)

	s := &models.Schedule{
		Start:   start,
		End:     &end,
		Service: strings.TrimSpace(service),
	}
	s.Summary = summarize(s)
	return s
}

// FromBooking builds a confirmed schedule out of a structured booking
// payload. Key names vary by workflow version, so each field probes a
// small alias list.
func FromBooking(b map[string]any, loc *time.Location) *models.Schedule {
	if len(b) == 0 {
		return nil
	}
	s := Parse(
		stringField(b, "date", "appointmentDate", "appointment_date"),
		stringField(b, "time", "appointmentTime", "appointment_time"),
		intField(b, "duration", "durationMinutes", "duration_minutes"),
		stringField(b, "service", "serviceName", "service_name"),
		loc,
	)
	if s != nil {
		s.Source = models.ScheduleConfirmed
		s.Summary = summarize(s)
	}
	return s
}

// FromSlots is the lower-trust fallback: it infers a tentative schedule
// from raw slot-filling variables with a fixed one-hour duration. The
// result is tagged inferred so consumers can filter it out.
func FromSlots(vars map[string]any, loc *time.Location) *models.Schedule {
	if len(vars) == 0 {
		return nil
	}
	s := Parse(
		stringField(vars, "appointmentDate", "appointment_date", "date", "preferredDate", "preferred_date"),
		stringField(vars, "appointmentTime", "appointment_time", "time", "preferredTime", "preferred_time"),
		defaultDurationMin,
		stringField(vars, "service", "serviceType", "service_type", "reason"),
		loc,
	)
	if s != nil {
		s.Source = models.ScheduleInferred
		s.Summary = summarize(s)
	}
	return s
}

// normalizeTime converts a time expression to 24-hour hour and minute.
// Accepts "2:30 PM", "9am", "14:30", "9", "12 AM". Midnight and noon are
// handled explicitly: 12 AM is hour 0, 12 PM stays hour 12.
func normalizeTime(raw string) (hour, minute int, ok bool) {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return 0, 0, false
	}

	meridiem := ""
	for _, suffix := range []string{"a.m.", "p.m.", "am", "pm"} {
		if strings.HasSuffix(t, suffix) {
			meridiem = string(suffix[0])
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
			break
		}
	}

	hPart, mPart, hasMinute := strings.Cut(t, ":")
	h, err := strconv.Atoi(strings.TrimSpace(hPart))
	if err != nil {
		return 0, 0, false
	}
	m := 0
	if hasMinute {
		if m, err = strconv.Atoi(strings.TrimSpace(mPart)); err != nil {
			return 0, 0, false
		}
	}

	switch meridiem {
	case "p":
		if h >= 1 && h <= 11 {
			h += 12
		}
	case "a":
		if h == 12 {
			h = 0
		}
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func summarize(s *models.Schedule) string {
	when := s.Start.Format("Jan 2, 2006 at 3:04 PM")
	if s.Service == "" {
		return fmt.Sprintf("Appointment on %s", when)
	}
	return fmt.Sprintf("%s on %s", s.Service, when)
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func intField(m map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}
