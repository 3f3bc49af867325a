package policy

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timePattern matches "H", "HH:mm" or "HH:mm@Zone"
var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3])(?:[^\d@]+([0-5]?[0-9]))?(?:@(.+))?$`)

// period computes the rollover instants of a date policy
type period interface {
	// last returns the latest rollover instant at or before t
	last(t time.Time) time.Time
	// next returns the rollover instant following the rollover r
	next(r time.Time) time.Time
}

// Date rotates at fixed points in time: daily, weekly or monthly
type Date struct {
	name     string
	period   period
	clock    Clock
	rollover time.Time // next rollover of the current file
}

func newDate(name string, p period, clock Clock) *Date {
	if clock == nil {
		clock = time.Now
	}
	return &Date{name: name, period: p, clock: clock}
}

// NewDaily creates a policy rotating every day at hour:minute in loc
func NewDaily(hour, minute int, loc *time.Location, clock Clock) *Date {
	return newDate("daily", daily{hour: hour, minute: minute, loc: locationOrLocal(loc)}, clock)
}

// NewWeekly creates a policy rotating every week on day at hour:minute in loc
func NewWeekly(day time.Weekday, hour, minute int, loc *time.Location, clock Clock) *Date {
	return newDate("weekly", weekly{day: day, daily: daily{hour: hour, minute: minute, loc: locationOrLocal(loc)}}, clock)
}

// NewMonthly creates a policy rotating on the first day of every month at
// hour:minute in loc
func NewMonthly(hour, minute int, loc *time.Location, clock Clock) *Date {
	return newDate("monthly", monthly{hour: hour, minute: minute, loc: locationOrLocal(loc)}, clock)
}

// Name returns the policy name
func (p *Date) Name() string {
	return p.name
}

// NextRollover returns the instant the current file stops accepting entries
func (p *Date) NextRollover() time.Time {
	return p.rollover
}

// CanContinueFile continues files last modified at or after the latest rollover
func (p *Date) CanContinueFile(path string) (bool, error) {
	info, err := statFile(path)
	if err != nil || info == nil {
		return false, err
	}
	return !info.ModTime().Before(p.period.last(p.clock())), nil
}

// Init computes the next rollover instant
func (p *Date) Init(_ string) error {
	p.rollover = p.period.next(p.period.last(p.clock()))
	return nil
}

// CanAcceptLogEntry accepts entries until the next rollover instant
func (p *Date) CanAcceptLogEntry(_ int) bool {
	return p.clock().Before(p.rollover)
}

type daily struct {
	hour, minute int
	loc          *time.Location
}

func (d daily) last(t time.Time) time.Time {
	t = t.In(d.loc)
	r := time.Date(t.Year(), t.Month(), t.Day(), d.hour, d.minute, 0, 0, d.loc)
	if r.After(t) {
		r = time.Date(t.Year(), t.Month(), t.Day()-1, d.hour, d.minute, 0, 0, d.loc)
	}
	return r
}

func (d daily) next(r time.Time) time.Time {
	r = r.In(d.loc)
	return time.Date(r.Year(), r.Month(), r.Day()+1, d.hour, d.minute, 0, 0, d.loc)
}

type weekly struct {
	daily
	day time.Weekday
}

func (w weekly) last(t time.Time) time.Time {
	r := w.daily.last(t)
	back := (int(r.Weekday()) - int(w.day) + 7) % 7
	return time.Date(r.Year(), r.Month(), r.Day()-back, w.hour, w.minute, 0, 0, w.loc)
}

func (w weekly) next(r time.Time) time.Time {
	r = r.In(w.loc)
	return time.Date(r.Year(), r.Month(), r.Day()+7, w.hour, w.minute, 0, 0, w.loc)
}

type monthly struct {
	hour, minute int
	loc          *time.Location
}

func (m monthly) last(t time.Time) time.Time {
	t = t.In(m.loc)
	r := time.Date(t.Year(), t.Month(), 1, m.hour, m.minute, 0, 0, m.loc)
	if r.After(t) {
		r = time.Date(t.Year(), t.Month()-1, 1, m.hour, m.minute, 0, 0, m.loc)
	}
	return r
}

func (m monthly) next(r time.Time) time.Time {
	r = r.In(m.loc)
	return time.Date(r.Year(), r.Month()+1, 1, m.hour, m.minute, 0, 0, m.loc)
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// parseTime parses "H[:mm][@Zone]"; an empty argument means midnight local time
func parseTime(argument string) (hour, minute int, loc *time.Location, err error) {
	argument = strings.TrimSpace(argument)
	if argument == "" {
		return 0, 0, time.Local, nil
	}

	m := timePattern.FindStringSubmatch(argument)
	if m == nil {
		return 0, 0, nil, fmtErrorf("invalid time '%s'", argument)
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	loc, err = parseZone(m[3])
	return hour, minute, loc, err
}

func parseZone(zone string) (*time.Location, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmtErrorf("invalid time zone '%s': %w", zone, err)
	}
	return loc, nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekly parses "[Day] [H[:mm]] [Zone]" and "[Day] [H[:mm]@Zone]"; the
// default is Monday at midnight local time
func parseWeekly(argument string) (day time.Weekday, hour, minute int, loc *time.Location, err error) {
	day, loc = time.Monday, time.Local
	fields := strings.Fields(argument)

	if len(fields) > 0 {
		if d, ok := weekdays[strings.ToLower(fields[0])]; ok {
			day = d
			fields = fields[1:]
		}
	}

	if len(fields) > 0 && fields[0] != "" && fields[0][0] >= '0' && fields[0][0] <= '9' {
		hour, minute, loc, err = parseTime(fields[0])
		if err != nil {
			return 0, 0, 0, nil, err
		}
		fields = fields[1:]
	}

	switch len(fields) {
	case 0:
	case 1:
		if loc, err = parseZone(fields[0]); err != nil {
			return 0, 0, 0, nil, err
		}
	default:
		return 0, 0, 0, nil, fmtErrorf("invalid weekly argument '%s'", argument)
	}
	return day, hour, minute, loc, nil
}
