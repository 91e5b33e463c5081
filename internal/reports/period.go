package reports

import (
	"fmt"
	"time"

	"finsight/internal/metrics"
)

const isoDate = "2006-01-02"

// ResolveWindows turns a period into a concrete inclusive date window
// plus the immediately preceding window used for delta comparison.
// Calendar periods (month, quarter, year) compare against the previous
// calendar period; ytd and custom compare against a window of equal
// day length ending the day before the current one starts.
func ResolveWindows(period Period, asOf time.Time, custom *metrics.DateWindow) (window, previous metrics.DateWindow, err error) {
	switch period {
	case PeriodMonth:
		start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		prevStart := start.AddDate(0, -1, 0)
		prevEnd := start.AddDate(0, 0, -1)
		return toWindow(start, end), toWindow(prevStart, prevEnd), nil

	case PeriodQuarter:
		quarterMonth := time.Month((int(asOf.Month())-1)/3*3 + 1)
		start := time.Date(asOf.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, -1)
		prevStart := start.AddDate(0, -3, 0)
		prevEnd := start.AddDate(0, 0, -1)
		return toWindow(start, end), toWindow(prevStart, prevEnd), nil

	case PeriodYear:
		start := time.Date(asOf.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(asOf.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
		prevStart := start.AddDate(-1, 0, 0)
		prevEnd := end.AddDate(-1, 0, 0)
		return toWindow(start, end), toWindow(prevStart, prevEnd), nil

	case PeriodYTD:
		start := time.Date(asOf.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
		return toWindow(start, end), precedingWindow(start, end), nil

	case PeriodCustom:
		if custom == nil {
			return window, previous, fmt.Errorf("custom period requires a date range")
		}
		start, parseErr := time.Parse(isoDate, custom.Start)
		if parseErr != nil {
			return window, previous, fmt.Errorf("invalid custom range start %q: %w", custom.Start, parseErr)
		}
		end, parseErr := time.Parse(isoDate, custom.End)
		if parseErr != nil {
			return window, previous, fmt.Errorf("invalid custom range end %q: %w", custom.End, parseErr)
		}
		if end.Before(start) {
			return window, previous, fmt.Errorf("custom range end %s before start %s", custom.End, custom.Start)
		}
		return *custom, precedingWindow(start, end), nil

	default:
		return window, previous, fmt.Errorf("unknown report period %q", period)
	}
}

// precedingWindow returns the window of the same day length that ends
// the day before start.
func precedingWindow(start, end time.Time) metrics.DateWindow {
	days := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))
	return toWindow(prevStart, prevEnd)
}

func toWindow(start, end time.Time) metrics.DateWindow {
	return metrics.DateWindow{Start: start.Format(isoDate), End: end.Format(isoDate)}
}
