package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	SlidingMode WindowMode = "sliding"
	MonthlyMode WindowMode = "monthly"

	Previous Direction = -1
	Next     Direction = 1
)

type (
	WindowMode string

	Direction int

	// SlidingWindow is an explicit inclusive date range. Start > End is
	// not rejected; callers own that.
	SlidingWindow struct {
		Start Date
		End   Date
	}

	MonthlyWindow struct {
		Year  int
		Month time.Month
	}

	// Window holds the state of both modes. Only the active mode is read by
	// Resolve and changed by Navigate; switching Mode leaves both untouched.
	Window struct {
		Mode    WindowMode
		Sliding SlidingWindow
		Monthly MonthlyWindow
	}
)

// ParseWindowMode defaults to sliding for an empty string.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SlidingMode:
		return SlidingMode, nil
	case MonthlyMode:
		return MonthlyMode, nil
	default:
		return "", fmt.Errorf("unknown window mode %q", s)
	}
}

// ParseDirection accepts "previous"/"prev" and "next".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "previous", "prev":
		return Previous, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// DefaultWindow is the last month up to today in sliding mode, with the
// monthly state parked on the current month.
func DefaultWindow(now time.Time) Window {
	today := DateOf(now)
	return Window{
		Mode: SlidingMode,
		Sliding: SlidingWindow{
			Start: AddMonths(today, -1),
			End:   today,
		},
		Monthly: MonthlyWindow{Year: today.Year(), Month: today.Month()},
	}
}

// Resolve returns the inclusive bounds of the active mode.
func (w Window) Resolve() (start, end Date) {
	if w.Mode == MonthlyMode {
		return w.Monthly.Resolve()
	}
	return w.Sliding.Resolve()
}

// Navigate shifts the active mode one month in dir.
func (w Window) Navigate(dir Direction) Window {
	if w.Mode == MonthlyMode {
		w.Monthly = w.Monthly.Navigate(dir)
	} else {
		w.Sliding = w.Sliding.Navigate(dir)
	}
	return w
}

func (s SlidingWindow) Resolve() (Date, Date) {
	return s.Start, s.End
}

// Navigate moves both ends by one calendar month, clamping to month end
// when the day does not exist in the target month.
func (s SlidingWindow) Navigate(dir Direction) SlidingWindow {
	step := 1
	if dir == Previous {
		step = -1
	}
	return SlidingWindow{
		Start: AddMonths(s.Start, step),
		End:   AddMonths(s.End, step),
	}
}

func (m MonthlyWindow) Resolve() (Date, Date) {
	return NewDate(m.Year, m.Month, 1), NewDate(m.Year, m.Month, DaysIn(m.Year, m.Month))
}

func (m MonthlyWindow) Navigate(dir Direction) MonthlyWindow {
	switch {
	case dir == Previous && m.Month == time.January:
		return MonthlyWindow{Year: m.Year - 1, Month: time.December}
	case dir == Previous:
		return MonthlyWindow{Year: m.Year, Month: m.Month - 1}
	case m.Month == time.December:
		return MonthlyWindow{Year: m.Year + 1, Month: time.January}
	default:
		return MonthlyWindow{Year: m.Year, Month: m.Month + 1}
	}
}

func (m MonthlyWindow) Validate() error {
	if m.Month < time.January || m.Month > time.December {
		return &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	return nil
}

// AddMonths shifts d by n calendar months. Days past the end of the target
// month clamp to its last day (Jan 31 + 1 month = Feb 28/29), unlike
// time.AddDate which rolls over into the following month.
func AddMonths(d Date, n int) Date {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}
