package staticbuild

import (
	"strconv"
	"time"

	"caltrain.dev/transit/model"
)

// buildCalendars implements §4.3 step 6: each calendar.txt row becomes
// a 7-slot day mask plus start/end dates; each calendar_dates.txt row
// appends to the exceptions map keyed by service id. Day order is
// [mon,tue,wed,thu,fri,sat,sun] per the data model.
func buildCalendars(rows []*CalendarRow) map[string]model.CalendarEntry {
	out := map[string]model.CalendarEntry{}
	for _, r := range rows {
		out[r.ServiceID] = model.CalendarEntry{
			Days:  [7]int{r.Monday, r.Tuesday, r.Wednesday, r.Thursday, r.Friday, r.Saturday, r.Sunday},
			Start: r.StartDate,
			End:   r.EndDate,
		}
	}
	return out
}

func buildExceptions(rows []*CalendarDateRow) map[string][]model.CalendarException {
	out := map[string][]model.CalendarException{}
	for _, r := range rows {
		out[r.ServiceID] = append(out[r.ServiceID], model.CalendarException{
			Date: r.Date,
			Type: r.ExceptionType,
		})
	}
	return out
}

// maxEndDate returns the maximum calendar.txt end_date across all
// service calendars. Callers fold in calendar_dates.txt separately if
// they want exceptions to extend the bound.
func maxEndDate(calendars map[string]model.CalendarEntry) int {
	var max int
	for _, c := range calendars {
		if c.End > max {
			max = c.End
		}
	}
	return max
}

// IsServiceActive implements §8's service-activity property: a
// service is active on date D iff D falls within [start,end] and the
// weekday mask has a 1 for D's weekday, then that verdict is
// overridden by any calendar_dates.txt exception for (service, D) —
// type 1 forces active, type 2 forces inactive.
func IsServiceActive(rules model.Rules, serviceID string, date int) bool {
	active := false
	if entry, ok := rules.Calendars[serviceID]; ok {
		if date >= entry.Start && date <= entry.End {
			active = entry.Days[weekdayIndex(date)] == 1
		}
	}

	for _, exc := range rules.Exceptions[serviceID] {
		if exc.Date != date {
			continue
		}
		switch exc.Type {
		case 1:
			active = true
		case 2:
			active = false
		}
	}

	return active
}

// weekdayIndex maps a YYYYMMDD date to [mon=0, ..., sun=6].
func weekdayIndex(date int) int {
	t, err := time.ParseInLocation("20060102", strconv.Itoa(date), time.UTC)
	if err != nil {
		return 0
	}
	// time.Weekday is Sunday=0 ... Saturday=6; rotate to Monday=0.
	return (int(t.Weekday()) + 6) % 7
}
