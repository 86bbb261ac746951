package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const icalDateFormat = "20060102"

// Builder accumulates all-day events and serializes them into an iCalendar
// document. Events keep insertion order. A Builder is constructed fresh per
// request and is not safe for concurrent use.
type Builder struct {
	cal   *ical.Calendar
	stamp time.Time
	count int
}

// NewBuilder creates an empty calendar builder.
func NewBuilder() *Builder {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//telecal//episode feed//EN")

	return &Builder{
		cal:   cal,
		stamp: time.Now().UTC(),
	}
}

// AddEvent appends one all-day event. Start and end carry date-only
// significance; for a single-day episode they are the same day.
func (b *Builder) AddEvent(title string, start, end time.Time) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.NewString())
	event.Props.SetText(ical.PropSummary, title)
	event.Props.SetDateTime(ical.PropDateTimeStamp, b.stamp)

	dtstart := ical.NewProp(ical.PropDateTimeStart)
	dtstart.SetValueType(ical.ValueDate)
	dtstart.Value = start.Format(icalDateFormat)
	event.Props.Set(dtstart)

	dtend := ical.NewProp(ical.PropDateTimeEnd)
	dtend.SetValueType(ical.ValueDate)
	dtend.Value = end.Format(icalDateFormat)
	event.Props.Set(dtend)

	b.cal.Children = append(b.cal.Children, event.Component)
	b.count++
}

// Len returns the number of accumulated events.
func (b *Builder) Len() int {
	return b.count
}

// Build serializes the accumulated events into a text/calendar document.
// It does not consume the builder; calling it again yields the same
// document.
func (b *Builder) Build() (string, error) {
	var sb strings.Builder
	if err := ical.NewEncoder(&sb).Encode(b.cal); err != nil {
		return "", err
	}
	return sb.String(), nil
}
