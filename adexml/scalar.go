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
	"errors"
	"fmt"
	"time"
)

var (
	ErrBadTime         = errors.New("time must be formatted as HH:MM")
	ErrBadDate         = errors.New("date must be formatted as DD/MM/YYYY")
	ErrUnknownCategory = errors.New("unknown category")
)

// Time is a wall-clock time of day, without a date or location.
type Time struct {
	Hour   int
	Minute int
}

// ParseTime parses a 24-hour "HH:MM" string. Both parts must be zero-padded.
func ParseTime(s string) (Time, error) {
	if len(s) != len("15:04") {
		return Time{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Time{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	return Time{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Before reports whether t is earlier in the day than u.
func (t Time) Before(u Time) bool {
	return t.Hour*60+t.Minute < u.Hour*60+u.Minute
}

// Date is a calendar day, without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a "DD/MM/YYYY" string. Day and month must be zero-padded
// and the year must have four digits.
func ParseDate(s string) (Date, error) {
	if len(s) != len("02/01/2006") {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String formats the date as ISO 8601, which is also its JSON form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// At combines the date with a time of day in loc.
func (d Date) At(t Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

// Category tags every resource and participant with what kind of entity it is.
type Category uint8

const (
	// CategoryUnknown is only produced by ParseCategoryLenient.
	CategoryUnknown Category = iota
	// CategoryTrainee is a group of students, like a course program.
	CategoryTrainee
	CategoryInstructor
	CategoryClassroom
	// CategoryEquipment is equipment, furniture, etc.
	CategoryEquipment
	// CategoryCategory5 holds the names of most courses.
	CategoryCategory5
	// CategoryCategory6 holds a small share of course names.
	CategoryCategory6
	// CategoryCategory7 holds maintenance activities, such as catering and cleaning.
	CategoryCategory7
	// CategoryCategory8 is unclassified.
	CategoryCategory8
)

var categoryNames = [...]string{
	CategoryUnknown:    "unknown",
	CategoryTrainee:    "trainee",
	CategoryInstructor: "instructor",
	CategoryClassroom:  "classroom",
	CategoryEquipment:  "equipment",
	CategoryCategory5:  "category5",
	CategoryCategory6:  "category6",
	CategoryCategory7:  "category7",
	CategoryCategory8:  "category8",
}

// ParseCategory parses one of the upstream category literals. Anything else,
// including "unknown", is an error.
func ParseCategory(s string) (Category, error) {
	for c := CategoryTrainee; c <= CategoryCategory8; c++ {
		if categoryNames[c] == s {
			return c, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseCategoryLenient is like ParseCategory, but maps unrecognized literals
// to CategoryUnknown. The decoders never use it.
func ParseCategoryLenient(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		return CategoryUnknown
	}
	return c
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return categoryNames[CategoryUnknown]
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
