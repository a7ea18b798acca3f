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

// Package adexml decodes the attribute-heavy XML documents returned by the
// ADE scheduling API into typed values.
//
// Decoding is done by walking the token stream and mapping each attribute
// onto its field by name. Attributes and elements that are not part of the
// model are skipped, since upstream adds new ones over time.
package adexml

import (
	"time"
)

// Projects is the result of a projects listing, in upstream order.
type Projects []Project

// Project is the scheduling dataset of one academic year. Its name is the
// year span, e.g. "2023-2024".
type Project struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// Resources is the result of a resources listing, in upstream order.
type Resources []Resource

// Resource is any schedulable entity: a course, a group of students,
// an instructor, a room or some equipment.
type Resource struct {
	ID       uint32   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Activities is the result of an activities listing, in upstream order.
type Activities []Activity

// Activity is a recurring teaching unit, such as all the practical sessions
// of a course for one term. Type is the free-text label set by upstream,
// e.g. "Examen écrit".
type Activity struct {
	ID     uint32  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

// Event is one concrete occurrence of an Activity.
type Event struct {
	ID           uint32             `json:"id"`
	Name         string             `json:"name"`
	StartHour    Time               `json:"startHour"`
	EndHour      Time               `json:"endHour"`
	Date         Date               `json:"date"`
	Info         string             `json:"info"`
	Note         string             `json:"note"`
	Participants []EventParticipant `json:"participants"`
}

// EventParticipant ties an Event to a resource involved in it. Upstream
// repeats this data for every event, so it is a copy rather than a reference.
type EventParticipant struct {
	ID       uint32   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Kind returns the teaching format of the activity.
func (a Activity) Kind() Kind {
	return ActivityKind(a.Name, a.Type)
}

// Span returns the start and end instants of the event in loc. If upstream
// sent the hours in the wrong order, they are swapped.
func (e Event) Span(loc *time.Location) (start, end time.Time) {
	start = e.Date.At(e.StartHour, loc)
	end = e.Date.At(e.EndHour, loc)
	if end.Before(start) {
		return end, start
	}
	return start, end
}

// ParticipantsOf returns the participants of the given category, keeping
// their order.
func (e Event) ParticipantsOf(c Category) []EventParticipant {
	var out []EventParticipant
	for _, p := range e.Participants {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// IDs returns the ids of the resources, keeping their order.
func (rs Resources) IDs() []uint32 {
	ids := make([]uint32, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}
