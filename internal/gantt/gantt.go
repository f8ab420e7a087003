// Package gantt computes task timeline layouts: a day-grained view
// window, bar placement with lane packing, and overdue detection. Pure
// date arithmetic, no rendering.
package gantt

import (
	"sort"
	"time"

	"github.com/hearth-app/hearth/internal/model"
)

// Window is an inclusive day-grained view range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the window width in days, minimum 1.
func (w Window) Days() int {
	d := daysBetween(w.Start, w.End) + 1
	if d < 1 {
		return 1
	}
	return d
}

// Shift pages the window forward or backward by its own span.
func (w Window) Shift(direction int) Window {
	offset := w.Days() * direction
	return Window{Start: w.Start.AddDate(0, 0, offset), End: w.End.AddDate(0, 0, offset)}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Both ends are reduced
// to their date before comparing, so a 23-hour daylight-saving day
// still counts as one day.
func daysBetween(a, b time.Time) int {
	return dayOrdinal(b) - dayOrdinal(a)
}

func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Preset view windows anchored on now.
func Today(now time.Time) Window {
	d := dayStart(now)
	return Window{Start: d, End: d}
}

func Week(now time.Time) Window {
	d := dayStart(now)
	return Window{Start: d, End: d.AddDate(0, 0, 6)}
}

func Month(now time.Time) Window {
	d := dayStart(now)
	return Window{Start: d, End: d.AddDate(0, 1, -1)}
}

func Year(now time.Time) Window {
	d := dayStart(now)
	return Window{Start: d, End: d.AddDate(1, 0, -1)}
}

// FitAll returns the tightest window covering every dated task, or the
// current week when no task carries dates.
func FitAll(tasks []model.Task, now time.Time) Window {
	var lo, hi time.Time
	for _, t := range tasks {
		if t.StartDate != nil && (lo.IsZero() || t.StartDate.Before(lo)) {
			lo = *t.StartDate
		}
		if t.EndDate != nil && (hi.IsZero() || t.EndDate.After(hi)) {
			hi = *t.EndDate
		}
	}
	if lo.IsZero() || hi.IsZero() {
		return Week(now)
	}
	return Window{Start: dayStart(lo), End: dayStart(hi)}
}

// Bar is one task laid out on the timeline. StartDay is the offset from
// the window start; tasks extending past either edge are clamped and
// flagged.
type Bar struct {
	TaskID       int64  `json:"task_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Lane         int    `json:"lane"`
	StartDay     int    `json:"start_day"`
	SpanDays     int    `json:"span_days"`
	ClampedStart bool   `json:"clamped_start,omitempty"`
	ClampedEnd   bool   `json:"clamped_end,omitempty"`
	Overdue      bool   `json:"overdue,omitempty"`
}

// Timeline is the computed layout for one window.
type Timeline struct {
	Window Window `json:"window"`
	Days   int    `json:"days"`
	Lanes  int    `json:"lanes"`
	Bars   []Bar  `json:"bars"`
}

// Layout places every dated task intersecting the window. Undated tasks
// and tasks wholly outside the window are skipped. Lanes are packed
// greedily: each bar takes the lowest lane whose previous bar ends
// before it starts.
func Layout(tasks []model.Task, w Window, now time.Time) Timeline {
	tl := Timeline{Window: w, Days: w.Days()}
	winStart := dayStart(w.Start)
	winEnd := dayStart(w.End)

	type span struct {
		task       model.Task
		start, end time.Time
	}
	spans := make([]span, 0, len(tasks))
	for _, t := range tasks {
		if t.StartDate == nil || t.EndDate == nil {
			continue
		}
		s, e := dayStart(*t.StartDate), dayStart(*t.EndDate)
		if e.Before(winStart) || s.After(winEnd) {
			continue
		}
		spans = append(spans, span{task: t, start: s, end: e})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if !spans[i].start.Equal(spans[j].start) {
			return spans[i].start.Before(spans[j].start)
		}
		return spans[i].end.Before(spans[j].end)
	})

	// laneEnds[i] holds the last occupied day of lane i.
	var laneEnds []time.Time
	for _, sp := range spans {
		bar := Bar{
			TaskID:  sp.task.ID,
			Name:    sp.task.Name,
			Status:  sp.task.Status,
			Overdue: Overdue(sp.task, now),
		}

		start, end := sp.start, sp.end
		if start.Before(winStart) {
			start = winStart
			bar.ClampedStart = true
		}
		if end.After(winEnd) {
			end = winEnd
			bar.ClampedEnd = true
		}
		bar.StartDay = daysBetween(winStart, start)
		bar.SpanDays = daysBetween(start, end) + 1

		bar.Lane = len(laneEnds)
		for i, laneEnd := range laneEnds {
			if laneEnd.Before(start) {
				bar.Lane = i
				break
			}
		}
		if bar.Lane == len(laneEnds) {
			laneEnds = append(laneEnds, end)
		} else if end.After(laneEnds[bar.Lane]) {
			laneEnds[bar.Lane] = end
		}

		tl.Bars = append(tl.Bars, bar)
	}
	tl.Lanes = len(laneEnds)
	return tl
}

// Overdue reports whether a task's end date has passed while it is
// still open.
func Overdue(t model.Task, now time.Time) bool {
	if t.EndDate == nil || !model.TaskOpen(t.Status) {
		return false
	}
	// The end date is inclusive: overdue begins the following day.
	return !now.Before(dayStart(*t.EndDate).AddDate(0, 0, 1))
}
