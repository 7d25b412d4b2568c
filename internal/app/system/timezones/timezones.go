// internal/app/system/timezones/timezones.go
package timezones

import (
	"sync"
	"time"
)

// Default is the zone used for "today" in visit plans and counts.
const Default = "Asia/Tokyo"

// DateLayout is the stored form of visit dates.
const DateLayout = "2006-01-02"

var (
	mu    sync.Mutex
	cache = map[string]*time.Location{}
)

// Location loads a zone by IANA ID, caching the result. An empty ID means
// Default. Unknown IDs fall back to a fixed +09:00 zone so a missing tzdata
// install cannot break date handling.
func Location(id string) *time.Location {
	if id == "" {
		id = Default
	}
	mu.Lock()
	defer mu.Unlock()
	if loc, ok := cache[id]; ok {
		return loc
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	cache[id] = loc
	return loc
}

// Valid reports whether id names a loadable zone.
func Valid(id string) bool {
	if id == "" {
		return false
	}
	_, err := time.LoadLocation(id)
	return err == nil
}

// Today formats now as a visit date in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// ParseDate validates a visit date and returns it in canonical form.
func ParseDate(s string) (string, bool) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", false
	}
	return d.Format(DateLayout), true
}

// DayRange returns [start of from, start of the day after to) in loc, for
// filtering timestamps by calendar day.
func DayRange(from, to string, loc *time.Location) (time.Time, time.Time, bool) {
	f, err1 := time.ParseInLocation(DateLayout, from, loc)
	t, err2 := time.ParseInLocation(DateLayout, to, loc)
	if err1 != nil || err2 != nil || t.Before(f) {
		return time.Time{}, time.Time{}, false
	}
	return f, t.AddDate(0, 0, 1), true
}
