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
	"github.com/ade-scheduler/adecal/adexml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const projectsDoc = `
<?xml version="1.0" encoding="UTF-8"?>
<projects>
	<project id="19" name="2022-2023" uid="1664978691092" version="670"/>
</projects>`

const resourcesDoc = `
<?xml version="1.0" encoding="UTF-8"?>
<resources>
	<resource id="8362" name="KINE21M_G8-A" path="FSM.FSM Cycle 2.KINE21M_G8." category="trainee" isGroup="false" type="" email="" size="1" fatherName="KINE21M_G8" fatherId="7449" color="255,255,255" levelAccess="read" owner="someone">
		<allMembers/>
		<memberships/>
		<constraints quality="100" distribution="100">
			<costs>
				<cost value="0.0" name="Priorité" id="4"/>
			</costs>
			<counters isUseCounter="false"/>
		</constraints>
		<rights othersRights="read" groupRights="rw" userRights="none" group="root" user="root" profileId="103"/>
	</resource>
	<resource id="4464" name="LEPL1104" category="category5"/>
	<resource id="497" name="Legat Vincent" category="instructor"/>
</resources>`

const activitiesDoc = `
<?xml version="1.0" encoding="UTF-8"?>
<activities>
	<activity id="19833" name="LEPL1104=E" type="Examen écrit" folderId="10419" repetition="1" durationInMinutes="180" nbEvents="1" code="MÉTHODES NUMÉRIQUES" isActive="true">
		<events>
			<event id="111290" activityId="19833" session="0" name="LEPL1104=E" endHour="11:30" startHour="08:30" date="12/06/2023" slot="2" day="0" week="39" info="Notes de séances pour juin 2023" note="Répartition en auditoires :&#10;- A.01: de Aarab à Crespo" color="255,255,255">
				<eventParticipants>
					<eventParticipant fromWorkflow="false" nodeId="141979" quantity="1" category="trainee" name="fsa11ba" id="7851"/>
					<eventParticipant fromWorkflow="false" nodeId="150877" quantity="1" category="category5" name="LEPL1104" id="4464"/>
					<eventParticipant fromWorkflow="true" nodeId="171232" quantity="1" category="classroom" name="A.01 SCES" id="848"/>
					<eventParticipant fromWorkflow="false" nodeId="150881" quantity="1" category="instructor" name="Legat Vincent" id="497"/>
				</eventParticipants>
				<additional/>
			</event>
		</events>
		<resources activityId="19833">
			<and load="1.0" quantity="1" id="7851" name="fsa11ba" category="trainee" isGroup="true"/>
			<or isContinuous="false" category="instructor" quantity="1" id="150880">
				<and load="1.0" quantity="1" id="497" name="Legat Vincent" category="instructor" isGroup="false"/>
			</or>
		</resources>
		<rights othersRights="read" groupRights="rw" userRights="none" group="root" user="root" profileId="118"/>
	</activity>
	<activity id="20001" name="LEPL1104_Q1" type="TP">
		<events/>
	</activity>
	<activity id="20002" name="LEPL1104-" type="Cours magistral"/>
</activities>`

func TestDecodeProjects(t *testing.T) {
	t.Parallel()
	projects, err := adexml.DecodeProjects([]byte(projectsDoc))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, adexml.Project{ID: 19, Name: "2022-2023"}, projects[0])
}

func TestDecodeProjects_Empty(t *testing.T) {
	t.Parallel()
	projects, err := adexml.DecodeProjects([]byte(`<projects></projects>`))
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)

	projects, err = adexml.DecodeProjects([]byte(`<projects/>`))
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestDecodeResources(t *testing.T) {
	t.Parallel()
	resources, err := adexml.DecodeResources([]byte(resourcesDoc))
	require.NoError(t, err)
	require.Len(t, resources, 3)
	assert.Equal(t, adexml.Resource{ID: 8362, Name: "KINE21M_G8-A", Category: adexml.CategoryTrainee}, resources[0])
	assert.Equal(t, adexml.Resource{ID: 4464, Name: "LEPL1104", Category: adexml.CategoryCategory5}, resources[1])
	assert.Equal(t, adexml.CategoryInstructor, resources[2].Category)
	assert.Equal(t, []uint32{8362, 4464, 497}, resources.IDs())
}

func TestDecodeActivities(t *testing.T) {
	t.Parallel()
	activities, err := adexml.DecodeActivities([]byte(activitiesDoc))
	require.NoError(t, err)
	require.Len(t, activities, 3)

	a := activities[0]
	assert.Equal(t, "LEPL1104=E", a.Name)
	assert.Equal(t, uint32(19833), a.ID)
	assert.Equal(t, "Examen écrit", a.Type)
	require.Len(t, a.Events, 1)

	ev := a.Events[0]
	assert.Equal(t, uint32(111290), ev.ID)
	assert.Equal(t, adexml.Time{Hour: 8, Minute: 30}, ev.StartHour)
	assert.Equal(t, adexml.Time{Hour: 11, Minute: 30}, ev.EndHour)
	assert.Equal(t, adexml.Date{Year: 2023, Month: time.June, Day: 12}, ev.Date)
	assert.Equal(t, "Notes de séances pour juin 2023", ev.Info)
	assert.Equal(t, "Répartition en auditoires :\n- A.01: de Aarab à Crespo", ev.Note)

	// Participants nested under <resources> of the activity must not leak in.
	require.Len(t, ev.Participants, 4)
	assert.Equal(t, adexml.EventParticipant{ID: 7851, Name: "fsa11ba", Category: adexml.CategoryTrainee}, ev.Participants[0])
	assert.Equal(t, adexml.CategoryClassroom, ev.Participants[2].Category)
	assert.Equal(t, "Legat Vincent", ev.Participants[3].Name)
}

func TestDecodeActivities_EmptyCollections(t *testing.T) {
	t.Parallel()
	activities, err := adexml.DecodeActivities([]byte(activitiesDoc))
	require.NoError(t, err)

	// <events/> wrapper without children
	assert.NotNil(t, activities[1].Events)
	assert.Empty(t, activities[1].Events)
	// no <events> wrapper at all
	assert.NotNil(t, activities[2].Events)
	assert.Empty(t, activities[2].Events)

	doc := `<activities>
		<activity id="1" name="X">
			<events>
				<event id="2" name="X" startHour="10:00" endHour="12:00" date="01/02/2024" info="" note="">
					<eventParticipants/>
				</event>
				<event id="3" name="X" startHour="10:00" endHour="12:00" date="02/02/2024"/>
			</events>
		</activity>
	</activities>`
	activities, err = adexml.DecodeActivities([]byte(doc))
	require.NoError(t, err)
	require.Len(t, activities[0].Events, 2)
	assert.Empty(t, activities[0].Events[0].Participants)
	assert.NotNil(t, activities[0].Events[0].Participants)
	assert.Empty(t, activities[0].Events[1].Participants)
}

func TestDecodeActivities_BadScalars(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		doc       string
		wantPath  string
		wantValue string
		wantErr   error
	}{
		{
			name: "unpadded start hour",
			doc: `<activities><activity id="1" name="A"><events>
				<event id="2" name="E" startHour="8:30" endHour="10:30" date="12/06/2023"/>
				</events></activity></activities>`,
			wantPath:  "activities/activity[0]/events/event[0]/@startHour",
			wantValue: "8:30",
			wantErr:   adexml.ErrBadTime,
		},
		{
			name: "iso date",
			doc: `<activities><activity id="1" name="A"><events>
				<event id="2" name="E" startHour="08:30" endHour="10:30" date="12/06/2023"/>
				<event id="3" name="E" startHour="08:30" endHour="10:30" date="2023-06-12"/>
				</events></activity></activities>`,
			wantPath:  "activities/activity[0]/events/event[1]/@date",
			wantValue: "2023-06-12",
			wantErr:   adexml.ErrBadDate,
		},
		{
			name: "unknown participant category",
			doc: `<activities><activity id="1" name="A"><events>
				<event id="2" name="E" startHour="08:30" endHour="10:30" date="12/06/2023">
					<eventParticipants><eventParticipant id="4" name="P" category="bogus"/></eventParticipants>
				</event>
				</events></activity></activities>`,
			wantPath:  "activities/activity[0]/events/event[0]/eventParticipants/eventParticipant[0]/@category",
			wantValue: "bogus",
			wantErr:   adexml.ErrUnknownCategory,
		},
		{
			name:      "negative id",
			doc:       `<activities><activity id="-1" name="A"/></activities>`,
			wantPath:  "activities/activity[0]/@id",
			wantValue: "-1",
			wantErr:   adexml.ErrBadID,
		},
		{
			name:     "missing name",
			doc:      `<activities><activity id="1"/></activities>`,
			wantPath: "activities/activity[0]/@name",
			wantErr:  adexml.ErrMissingAttribute,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := adexml.DecodeActivities([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			var decErr *adexml.DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, tc.wantPath, decErr.Path)
			assert.Equal(t, tc.wantValue, decErr.Value)
		})
	}
}

func TestDecodeResources_UnknownCategory(t *testing.T) {
	t.Parallel()
	_, err := adexml.DecodeResources([]byte(`<resources><resource id="1" name="A" category="bogus"/></resources>`))
	require.ErrorIs(t, err, adexml.ErrUnknownCategory)
}

func TestDecode_WrongRoot(t *testing.T) {
	t.Parallel()
	_, err := adexml.DecodeProjects([]byte(resourcesDoc))
	require.ErrorIs(t, err, adexml.ErrUnexpectedRoot)

	_, err = adexml.DecodeProjects([]byte(""))
	require.ErrorIs(t, err, adexml.ErrNoRoot)
}

func TestDecode_Truncated(t *testing.T) {
	t.Parallel()
	_, err := adexml.DecodeActivities([]byte(`<activities><activity id="1" name="A"><events>`))
	var decErr *adexml.DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDecode_Latin1(t *testing.T) {
	t.Parallel()
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><projects><project id=\"1\" name=\"ann\xe9e\"/></projects>")
	projects, err := adexml.DecodeProjects(doc)
	require.NoError(t, err)
	assert.Equal(t, "année", projects[0].Name)
}

func TestDecode_Deterministic(t *testing.T) {
	t.Parallel()
	first, err := adexml.DecodeActivities([]byte(activitiesDoc))
	require.NoError(t, err)
	second, err := adexml.DecodeActivities([]byte(activitiesDoc))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
