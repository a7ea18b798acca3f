//
// See the file COPYRIGHT for copyright information.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package ics renders activities as an iCalendar feed that calendar apps can
// subscribe to.
package ics

import (
	"fmt"
	"github.com/ade-scheduler/adecal/adexml"
	ical "github.com/arran4/golang-ical"
	"strings"
	"time"
)

// UIDDomain is the right-hand side of every event UID.
const UIDDomain = "adecal"

// DefaultTimezone is where the upstream wall-clock times are meant to be read.
const DefaultTimezone = "Europe/Brussels"

// Options describe the feed as a whole.
type Options struct {
	// ProdID is the PRODID of the calendar.
	ProdID string
	// Name is shown by calendar apps as the feed title. Optional.
	Name string
	// Location is the timezone of the upstream times. Defaults to UTC.
	Location *time.Location
	// Stamp is the DTSTAMP of every event. Defaults to now.
	Stamp time.Time
}

// Export builds a calendar holding one VEVENT per event of activities.
func Export(activities adexml.Activities, opts Options) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProdID)
	cal.SetXWRTimezone(loc.String())
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	for _, activity := range activities {
		summary := activity.Kind().Prefix() + " " + activity.Name
		for _, event := range activity.Events {
			start, end := event.Span(loc)
			vevent := cal.AddEvent(fmt.Sprintf("%d-%d@%s", activity.ID, event.ID, UIDDomain))
			vevent.SetDtStampTime(stamp)
			vevent.SetStartAt(start)
			vevent.SetEndAt(end)
			vevent.SetSummary(summary)
			if location := names(event.ParticipantsOf(adexml.CategoryClassroom)); location != "" {
				vevent.SetLocation(location)
			}
			vevent.SetDescription(describe(activity, event))
		}
	}
	return cal
}

// Serialize renders the calendar as text/calendar.
func Serialize(cal *ical.Calendar) string {
	return cal.Serialize()
}

func describe(activity adexml.Activity, event adexml.Event) string {
	lines := []string{activity.Name}
	if event.Name != "" && event.Name != activity.Name {
		lines = append(lines, event.Name)
	}
	if instructors := names(event.ParticipantsOf(adexml.CategoryInstructor)); instructors != "" {
		lines = append(lines, instructors)
	}
	for _, s := range []string{event.Info, event.Note} {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func names(participants []adexml.EventParticipant) string {
	out := make([]string, 0, len(participants))
	for _, p := range participants {
		out = append(out, p.Name)
	}
	return strings.Join(out, ", ")
}
