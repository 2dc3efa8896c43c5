package events

import (
	"time"
)

// WindowFor returns the admissible start window for the day of t.
func (c *Config) WindowFor(t time.Time) Window {
	if c.WeekendEnabled {
		switch t.Weekday() {
		case time.Saturday, time.Sunday:
			return c.WeekendWindow
		}
	}
	return c.WeekdayWindow
}

// AdjustStartTime moves a candidate start time into the admissible window.
// The offset is added first, then the result is rounded up to granularity.
// Results past the window roll over to the next day's window start (plus
// offset); results before it are pushed to the window start (plus offset).
// The push adds the offset a second time, so a large offset can land at or
// past the window end.
func AdjustStartTime(t time.Time, w Window, offset, granularity time.Duration) time.Time {
	result := ceilTo(t.Add(offset), granularity)
	hour := float64(result.Hour())

	if hour >= w.Latest {
		next := midnight(result).AddDate(0, 0, 1)
		return ceilTo(next.Add(hours(w.Earliest)+offset), granularity)
	}
	if hour < w.Earliest {
		return ceilTo(result.Add(hours(w.Earliest-hour)+offset), granularity)
	}
	return result
}

// adjustStartTime applies AdjustStartTime with the configured window, drawing
// a random offset within the window's span when randomize is set.
func (m *Manager) adjustStartTime(t time.Time, randomize bool) time.Time {
	w := m.cfg.WindowFor(t)
	var offset time.Duration
	if randomize {
		span := int((w.Latest - w.Earliest) * 60)
		offset = time.Duration(m.rng.Below(span)) * time.Minute
	}
	return AdjustStartTime(t, w, offset, m.cfg.StartGranularity)
}

// ceilTo rounds t up to the next multiple of g counted from t's midnight.
func ceilTo(t time.Time, g time.Duration) time.Time {
	if g <= 0 {
		return t
	}
	day := midnight(t)
	since := t.Sub(day)
	if rem := since % g; rem != 0 {
		since += g - rem
	}
	return day.Add(since)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
