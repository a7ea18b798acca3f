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

package adexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"golang.org/x/net/html/charset"
	"io"
	"strconv"
)

var (
	ErrMissingAttribute = errors.New("missing attribute")
	ErrBadID            = errors.New("id must be an unsigned 32-bit integer")
	ErrUnexpectedRoot   = errors.New("unexpected root element")
	ErrNoRoot           = errors.New("document has no root element")
)

// DecodeError reports where a document failed to decode. Path locates the
// offending node, e.g. "activities/activity[0]/events/event[2]/@startHour".
type DecodeError struct {
	Path  string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("adexml: %v", e.Err)
	}
	return fmt.Sprintf("adexml: %v: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeProjects decodes the response to a projects listing.
func DecodeProjects(doc []byte) (Projects, error) {
	projects := make(Projects, 0)
	err := decodeRoot(doc, "projects", func(d *decoder, start xml.StartElement, path string) error {
		if start.Name.Local != "project" {
			return d.dec.Skip()
		}
		p, err := d.project(start, d.index(path, "project"))
		if err != nil {
			return err
		}
		projects = append(projects, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// DecodeResources decodes the response to a resources listing.
func DecodeResources(doc []byte) (Resources, error) {
	resources := make(Resources, 0)
	err := decodeRoot(doc, "resources", func(d *decoder, start xml.StartElement, path string) error {
		if start.Name.Local != "resource" {
			return d.dec.Skip()
		}
		r, err := d.resource(start, d.index(path, "resource"))
		if err != nil {
			return err
		}
		resources = append(resources, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// DecodeActivities decodes the response to an activities listing, including
// the nested events and their participants.
func DecodeActivities(doc []byte) (Activities, error) {
	activities := make(Activities, 0)
	err := decodeRoot(doc, "activities", func(d *decoder, start xml.StartElement, path string) error {
		if start.Name.Local != "activity" {
			return d.dec.Skip()
		}
		a, err := d.activity(start, d.index(path, "activity"))
		if err != nil {
			return err
		}
		activities = append(activities, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

type childFunc func(d *decoder, start xml.StartElement, path string) error

type decoder struct {
	dec *xml.Decoder
	// counts numbers repeated siblings so paths can carry an index.
	counts map[string]int
}

func decodeRoot(doc []byte, rootName string, onChild childFunc) error {
	d := &decoder{
		dec:    xml.NewDecoder(bytes.NewReader(doc)),
		counts: make(map[string]int),
	}
	// Some upstream deployments declare ISO-8859-1 rather than UTF-8.
	d.dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := d.dec.Token()
		if errors.Is(err, io.EOF) {
			return &DecodeError{Err: ErrNoRoot}
		}
		if err != nil {
			return &DecodeError{Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootName {
			return &DecodeError{
				Path:  start.Name.Local,
				Value: start.Name.Local,
				Err:   fmt.Errorf("%w: wanted <%v>", ErrUnexpectedRoot, rootName),
			}
		}
		return d.children(rootName, onChild)
	}
}

// children calls onChild for every child element of the element that was
// just opened, and returns once that element is closed. onChild must consume
// the child entirely, e.g. by calling children again or Skip.
func (d *decoder) children(path string, onChild childFunc) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return &DecodeError{Path: path, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := onChild(d, t, path); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (d *decoder) index(parent, name string) string {
	key := parent + "/" + name
	i := d.counts[key]
	d.counts[key] = i + 1
	return fmt.Sprintf("%v[%d]", key, i)
}

// attrs gives access to an element's attributes by local name.
type attrs struct {
	path   string
	values map[string]string
}

func newAttrs(start xml.StartElement, path string) attrs {
	values := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		values[a.Name.Local] = a.Value
	}
	return attrs{path: path, values: values}
}

func (a attrs) errAt(name, value string, err error) error {
	return &DecodeError{Path: a.path + "/@" + name, Value: value, Err: err}
}

func (a attrs) required(name string) (string, error) {
	v, ok := a.values[name]
	if !ok {
		return "", a.errAt(name, "", ErrMissingAttribute)
	}
	return v, nil
}

func (a attrs) optional(name string) string {
	return a.values[name]
}

func (a attrs) id(name string) (uint32, error) {
	v, err := a.required(name)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, a.errAt(name, v, ErrBadID)
	}
	return uint32(id), nil
}

func (a attrs) time(name string) (Time, error) {
	v, err := a.required(name)
	if err != nil {
		return Time{}, err
	}
	t, err := ParseTime(v)
	if err != nil {
		return Time{}, a.errAt(name, v, err)
	}
	return t, nil
}

func (a attrs) date(name string) (Date, error) {
	v, err := a.required(name)
	if err != nil {
		return Date{}, err
	}
	dt, err := ParseDate(v)
	if err != nil {
		return Date{}, a.errAt(name, v, err)
	}
	return dt, nil
}

func (a attrs) category(name string) (Category, error) {
	v, err := a.required(name)
	if err != nil {
		return CategoryUnknown, err
	}
	c, err := ParseCategory(v)
	if err != nil {
		return CategoryUnknown, a.errAt(name, v, err)
	}
	return c, nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) project(start xml.StartElement, path string) (Project, error) {
	a := newAttrs(start, path)
	id, errID := a.id("id")
	name, errName := a.required("name")
	if err := firstErr(errID, errName); err != nil {
		return Project{}, err
	}
	if err := d.dec.Skip(); err != nil {
		return Project{}, &DecodeError{Path: path, Err: err}
	}
	return Project{ID: id, Name: name}, nil
}

func (d *decoder) resource(start xml.StartElement, path string) (Resource, error) {
	a := newAttrs(start, path)
	id, errID := a.id("id")
	name, errName := a.required("name")
	category, errCategory := a.category("category")
	if err := firstErr(errID, errName, errCategory); err != nil {
		return Resource{}, err
	}
	if err := d.dec.Skip(); err != nil {
		return Resource{}, &DecodeError{Path: path, Err: err}
	}
	return Resource{ID: id, Name: name, Category: category}, nil
}

func (d *decoder) activity(start xml.StartElement, path string) (Activity, error) {
	a := newAttrs(start, path)
	id, errID := a.id("id")
	name, errName := a.required("name")
	if err := firstErr(errID, errName); err != nil {
		return Activity{}, err
	}
	activity := Activity{
		ID:     id,
		Name:   name,
		Type:   a.optional("type"),
		Events: make([]Event, 0),
	}
	err := d.children(path, func(d *decoder, child xml.StartElement, path string) error {
		if child.Name.Local != "events" {
			return d.dec.Skip()
		}
		return d.children(path+"/events", func(d *decoder, ev xml.StartElement, path string) error {
			if ev.Name.Local != "event" {
				return d.dec.Skip()
			}
			event, err := d.event(ev, d.index(path, "event"))
			if err != nil {
				return err
			}
			activity.Events = append(activity.Events, event)
			return nil
		})
	})
	if err != nil {
		return Activity{}, err
	}
	return activity, nil
}

func (d *decoder) event(start xml.StartElement, path string) (Event, error) {
	a := newAttrs(start, path)
	id, errID := a.id("id")
	name, errName := a.required("name")
	startHour, errStart := a.time("startHour")
	endHour, errEnd := a.time("endHour")
	date, errDate := a.date("date")
	if err := firstErr(errID, errName, errStart, errEnd, errDate); err != nil {
		return Event{}, err
	}
	event := Event{
		ID:           id,
		Name:         name,
		StartHour:    startHour,
		EndHour:      endHour,
		Date:         date,
		Info:         a.optional("info"),
		Note:         a.optional("note"),
		Participants: make([]EventParticipant, 0),
	}
	err := d.children(path, func(d *decoder, child xml.StartElement, path string) error {
		if child.Name.Local != "eventParticipants" {
			return d.dec.Skip()
		}
		return d.children(path+"/eventParticipants", func(d *decoder, p xml.StartElement, path string) error {
			if p.Name.Local != "eventParticipant" {
				return d.dec.Skip()
			}
			participant, err := d.participant(p, d.index(path, "eventParticipant"))
			if err != nil {
				return err
			}
			event.Participants = append(event.Participants, participant)
			return nil
		})
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

func (d *decoder) participant(start xml.StartElement, path string) (EventParticipant, error) {
	a := newAttrs(start, path)
	id, errID := a.id("id")
	name, errName := a.required("name")
	category, errCategory := a.category("category")
	if err := firstErr(errID, errName, errCategory); err != nil {
		return EventParticipant{}, err
	}
	if err := d.dec.Skip(); err != nil {
		return EventParticipant{}, &DecodeError{Path: path, Err: err}
	}
	return EventParticipant{ID: id, Name: name, Category: category}, nil
}
