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

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/adexml"
	"github.com/ade-scheduler/adecal/api"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/lib/herr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeResolver struct {
	activities adexml.Activities
	err        error
	panics     bool

	mu          sync.Mutex
	codes       [][]string
	hadDeadline bool
}

func (f *fakeResolver) record(ctx context.Context, codes []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, codes)
	_, f.hadDeadline = ctx.Deadline()
}

func (f *fakeResolver) calls() ([][]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes, f.hadDeadline
}

func (f *fakeResolver) Resolve(ctx context.Context, code string) (adexml.Activities, error) {
	if f.panics {
		panic("resolver exploded")
	}
	f.record(ctx, []string{code})
	return f.activities, f.err
}

func (f *fakeResolver) ResolveMany(ctx context.Context, codes []string) (adexml.Activities, error) {
	f.record(ctx, codes)
	return f.activities, f.err
}

func sampleActivities() adexml.Activities {
	return adexml.Activities{{
		ID:   19833,
		Name: "LEPL1104=E",
		Type: "Examen écrit",
		Events: []adexml.Event{{
			ID:        2001,
			Name:      "LEPL1104=E",
			StartHour: adexml.Time{Hour: 8, Minute: 30},
			EndHour:   adexml.Time{Hour: 11, Minute: 30},
			Date:      adexml.Date{Year: 2023, Month: time.June, Day: 12},
			Participants: []adexml.EventParticipant{
				{ID: 1, Name: "BARB91", Category: adexml.CategoryClassroom},
			},
		}},
	}}
}

func newServer(t *testing.T, resolver api.Resolver) *httptest.Server {
	t.Helper()
	cfg := conf.Default()
	loc, err := time.LoadLocation("Europe/Brussels")
	require.NoError(t, err)
	srv := httptest.NewServer(api.AddToMux(nil, cfg, resolver, loc))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestGetCalendar(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{activities: sampleActivities()}
	srv := newServer(t, resolver)

	resp, body := get(t, srv, "/adecal/api/calendar/lepl1104", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=300", resp.Header.Get("Cache-Control"))
	_, err := uuid.Parse(resp.Header.Get(herr.RequestIDHeader))
	require.NoError(t, err)

	var activities []struct {
		Name   string `json:"name"`
		Events []struct {
			StartHour string `json:"startHour"`
			Date      string `json:"date"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "LEPL1104=E", activities[0].Name)
	assert.Equal(t, "08:30", activities[0].Events[0].StartHour)
	assert.Equal(t, "2023-06-12", activities[0].Events[0].Date)

	codes, hadDeadline := resolver.calls()
	assert.Equal(t, [][]string{{"lepl1104"}}, codes)
	assert.True(t, hadDeadline)
}

func TestGetCalendar_Empty(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{activities: adexml.Activities{}})
	resp, body := get(t, srv, "/adecal/api/calendar/NOPE9999", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)
}

func TestGetCalendar_ResolverError(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{err: &ade.TransportError{Op: "projects", Status: 503, Body: "secret upstream detail"}})

	resp, body := get(t, srv, "/adecal/api/calendar/LEPL1104", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, herr.ApplicationProblemMediaType, resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "Failed to fetch calendar")
	assert.NotContains(t, body, "secret upstream detail")
	assert.Empty(t, resp.Header.Get("Cache-Control"))
}

func TestGetCalendar_BlankCode(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{}
	srv := newServer(t, resolver)
	resp, _ := get(t, srv, "/adecal/api/calendar/%20%20", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	codes, _ := resolver.calls()
	assert.Empty(t, codes)
}

func TestGetCalendar_Panic(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{panics: true})
	resp, body := get(t, srv, "/adecal/api/calendar/LEPL1104", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "The server malfunctioned")
}

func TestGetCalendar_KeepsClientRequestID(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{activities: adexml.Activities{}})
	id := uuid.NewString()

	resp, _ := get(t, srv, "/adecal/api/calendar/LEPL1104", http.Header{herr.RequestIDHeader: {id}})
	assert.Equal(t, id, resp.Header.Get(herr.RequestIDHeader))

	resp, _ = get(t, srv, "/adecal/api/calendar/LEPL1104", http.Header{herr.RequestIDHeader: {"not-a-uuid"}})
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(herr.RequestIDHeader))
}

func TestGetCalendarICS(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{activities: sampleActivities()})
	resp, body := get(t, srv, "/adecal/api/calendar/LEPL1104/ics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/calendar; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "LEPL1104.ics")
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "SUMMARY:EXAM: LEPL1104=E")
	assert.Contains(t, body, "UID:19833-2001@adecal")
}

func TestGetCalendars(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{activities: sampleActivities()}
	srv := newServer(t, resolver)

	resp, _ := get(t, srv, "/adecal/api/calendars?code=LEPL1104,LINFO1252", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := get(t, srv, "/adecal/api/calendars/ics?code=LEPL1104&code=LINFO1252", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "BEGIN:VEVENT")
	codes, _ := resolver.calls()
	assert.Equal(t, [][]string{{"LEPL1104", "LINFO1252"}, {"LEPL1104", "LINFO1252"}}, codes)

	resp, _ = get(t, srv, "/adecal/api/calendars", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCalendars_Error(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{err: errors.New("boom")})
	resp, _ := get(t, srv, "/adecal/api/calendars/ics?code=A,B", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPing(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeResolver{})
	resp, body := get(t, srv, "/adecal/api/ping", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ack\n", body)
}
