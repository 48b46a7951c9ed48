// Package recurrence parses appointment recurrence rules and computes the
// dates of following occurrences.
//
// Rules are RFC 5545 RRULE bodies such as "FREQ=MONTHLY;INTERVAL=2", or one
// of the bare keywords DAILY, WEEKLY, MONTHLY and YEARLY. Rules made only of
// a frequency and an interval are stepped with calendar arithmetic from the
// previous occurrence, clamping to the end of shorter months. Rules with BY*
// parts are expanded by rrule-go.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Frequency is the base repeat unit of a rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// ErrEmptyRule is returned when parsing a blank rule.
var ErrEmptyRule = errors.New("empty recurrence rule")

// Fallback is applied to stored rules that no longer parse.
var Fallback = Rule{Freq: Yearly, Interval: 1}

// Rule is a parsed recurrence rule.
type Rule struct {
	Freq     Frequency
	Interval int
	Count    int       // 0 = unbounded
	Until    time.Time // zero = unbounded

	// opt is set for rules with BY* parts that need full RRULE expansion.
	opt *rrule.ROption
}

// Parse reads a rule string. Keys and values are case-insensitive.
func Parse(s string) (Rule, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "RRULE:")
	if s == "" {
		return Rule{}, ErrEmptyRule
	}

	switch f := Frequency(s); f {
	case Daily, Weekly, Monthly, Yearly:
		return Rule{Freq: f, Interval: 1}, nil
	}

	if err := checkInterval(s); err != nil {
		return Rule{}, err
	}
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid recurrence rule %q: %w", s, err)
	}

	r := Rule{
		Interval: opt.Interval,
		Count:    opt.Count,
		Until:    opt.Until,
	}
	switch opt.Freq {
	case rrule.DAILY:
		r.Freq = Daily
	case rrule.WEEKLY:
		r.Freq = Weekly
	case rrule.MONTHLY:
		r.Freq = Monthly
	case rrule.YEARLY:
		r.Freq = Yearly
	default:
		return Rule{}, fmt.Errorf("invalid recurrence rule %q: unsupported frequency %s", s, opt.Freq)
	}
	if r.Interval == 0 {
		r.Interval = 1
	}
	if hasByParts(opt) {
		r.opt = opt
	}
	return r, nil
}

// ParseOrFallback parses s, substituting Fallback when it does not parse.
// The second result reports whether the fallback was used.
func ParseOrFallback(s string) (Rule, bool) {
	r, err := Parse(s)
	if err != nil {
		return Fallback, true
	}
	return r, false
}

// checkInterval rejects INTERVAL values below 1, which rrule-go would
// silently treat as 1.
func checkInterval(s string) error {
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key != "INTERVAL" {
			continue
		}
		if n, err := strconv.Atoi(value); err != nil || n < 1 {
			return fmt.Errorf("invalid recurrence rule %q: interval must be at least 1", s)
		}
	}
	return nil
}

func hasByParts(o *rrule.ROption) bool {
	return len(o.Bysetpos) > 0 || len(o.Bymonth) > 0 || len(o.Bymonthday) > 0 ||
		len(o.Byyearday) > 0 || len(o.Byweekno) > 0 || len(o.Byweekday) > 0 ||
		len(o.Byhour) > 0 || len(o.Byminute) > 0 || len(o.Bysecond) > 0 || len(o.Byeaster) > 0
}

// String returns the canonical form of the rule.
func (r Rule) String() string {
	if r.opt != nil {
		return r.opt.RRuleString()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "FREQ=%s;INTERVAL=%d", r.Freq, r.interval())
	if r.Count > 0 {
		fmt.Fprintf(&b, ";COUNT=%d", r.Count)
	}
	if !r.Until.IsZero() {
		b.WriteString(";UNTIL=" + r.Until.UTC().Format("20060102T150405Z"))
	}
	return b.String()
}

func (r Rule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Next returns the occurrence following base, treating base as the first
// occurrence of the series. The time of day is preserved. ok is false when
// the rule is exhausted.
func (r Rule) Next(base time.Time) (time.Time, bool) {
	return r.NextFrom(base, 1)
}

// NextFrom returns the occurrence following base, where base is occurrence
// number seq of its series (1 for the first). The step is taken from base
// itself, so an occurrence moved to another date or time carries the rest of
// the series with it. COUNT is checked against seq.
func (r Rule) NextFrom(base time.Time, seq int) (time.Time, bool) {
	if r.Count > 0 && seq >= r.Count {
		return time.Time{}, false
	}
	next := r.step(base)
	if r.opt != nil {
		var ok bool
		if next, ok = r.expandFrom(base); !ok {
			return time.Time{}, false
		}
	}
	if !r.Until.IsZero() && next.After(r.Until) {
		return time.Time{}, false
	}
	return next, true
}

// Upcoming lists up to n occurrences after base, base excluded, where base
// is occurrence number seq of its series.
func (r Rule) Upcoming(base time.Time, seq, n int) []time.Time {
	var out []time.Time
	cur := base
	for len(out) < n {
		next, ok := r.NextFrom(cur, seq)
		if !ok {
			break
		}
		out = append(out, next)
		cur = next
		seq++
	}
	return out
}

func (r Rule) step(t time.Time) time.Time {
	n := r.interval()
	switch r.Freq {
	case Daily:
		return t.AddDate(0, 0, n)
	case Weekly:
		return t.AddDate(0, 0, 7*n)
	case Monthly:
		return AddMonths(t, n)
	default:
		return AddMonths(t, 12*n)
	}
}

// expandFrom runs the full RRULE with base as DTSTART. COUNT is left to
// NextFrom, which knows the position of base in the series.
func (r Rule) expandFrom(base time.Time) (time.Time, bool) {
	opt := *r.opt
	opt.Dtstart = base
	opt.Count = 0
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false
	}
	next := rr.After(base, false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// AddMonths adds n months to t, clamping the day to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
