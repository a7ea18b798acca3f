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

package adexml_test

import (
	"encoding/json"
	"github.com/ade-scheduler/adecal/adexml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	t.Parallel()
	tm, err := adexml.ParseTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, tm.Hour)
	assert.Equal(t, 30, tm.Minute)

	tm, err = adexml.ParseTime("23:59")
	require.NoError(t, err)
	assert.Equal(t, adexml.Time{Hour: 23, Minute: 59}, tm)

	for _, bad := range []string{"8:30", "08:3", "24:00", "08:60", "08h30", "08:30:00", " 8:30", "", "ab:cd"} {
		_, err = adexml.ParseTime(bad)
		assert.ErrorIs(t, err, adexml.ErrBadTime, bad)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	d, err := adexml.ParseDate("12/06/2023")
	require.NoError(t, err)
	assert.Equal(t, 2023, d.Year)
	assert.Equal(t, time.June, d.Month)
	assert.Equal(t, 12, d.Day)

	for _, bad := range []string{"2023-06-12", "1/6/2023", "12/6/2023", "12/06/23", "31/02/2023", "12/13/2023", ""} {
		_, err = adexml.ParseDate(bad)
		assert.ErrorIs(t, err, adexml.ErrBadDate, bad)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	c, err := adexml.ParseCategory("trainee")
	require.NoError(t, err)
	assert.Equal(t, adexml.CategoryTrainee, c)

	c, err = adexml.ParseCategory("classroom")
	require.NoError(t, err)
	assert.Equal(t, adexml.CategoryClassroom, c)

	for _, s := range []string{"instructor", "equipment", "category5", "category6", "category7", "category8"} {
		c, err = adexml.ParseCategory(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}

	for _, bad := range []string{"bogus", "Trainee", "unknown", ""} {
		_, err = adexml.ParseCategory(bad)
		assert.ErrorIs(t, err, adexml.ErrUnknownCategory, bad)
	}
}

func TestParseCategoryLenient(t *testing.T) {
	t.Parallel()
	assert.Equal(t, adexml.CategoryInstructor, adexml.ParseCategoryLenient("instructor"))
	assert.Equal(t, adexml.CategoryUnknown, adexml.ParseCategoryLenient("bogus"))
}

func TestJSONForm(t *testing.T) {
	t.Parallel()
	ev := adexml.Event{
		ID:        1,
		Name:      "LEPL1104=E",
		StartHour: adexml.Time{Hour: 8, Minute: 30},
		EndHour:   adexml.Time{Hour: 11, Minute: 30},
		Date:      adexml.Date{Year: 2023, Month: time.June, Day: 12},
		Participants: []adexml.EventParticipant{
			{ID: 848, Name: "A.01 SCES", Category: adexml.CategoryClassroom},
		},
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"name": "LEPL1104=E",
		"startHour": "08:30",
		"endHour": "11:30",
		"date": "2023-06-12",
		"info": "",
		"note": "",
		"participants": [{"id": 848, "name": "A.01 SCES", "category": "classroom"}]
	}`, string(b))
}
