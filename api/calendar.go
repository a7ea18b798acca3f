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

package api

import (
	"context"
	"fmt"
	"github.com/ade-scheduler/adecal/adexml"
	"github.com/ade-scheduler/adecal/ics"
	"github.com/ade-scheduler/adecal/lib/herr"
	"net/http"
	"strings"
	"time"
)

// maxCodeLength is far above any real course code, and keeps junk out of
// upstream queries and logs.
const maxCodeLength = 64

// maxCodes bounds how many codes one request may combine.
const maxCodes = 20

// Resolver is what the calendar endpoints need from calendar.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, code string) (adexml.Activities, error)
	ResolveMany(ctx context.Context, codes []string) (adexml.Activities, error)
}

type calendarLookup struct {
	resolver       Resolver
	requestTimeout time.Duration
	cacheControl   time.Duration
}

type icsFeed struct {
	tz     *time.Location
	prodID string
}

type GetCalendar struct {
	calendarLookup
}

func (action GetCalendar) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp, errHTTP := action.getCalendar(req)
	if errHTTP != nil {
		errHTTP.From("[getCalendar]").WriteResponse(w)
		return
	}
	action.setCacheControl(w)
	mustWriteJSON(w, req, resp)
}

func (action GetCalendar) getCalendar(req *http.Request) (adexml.Activities, *herr.HTTPError) {
	code, errHTTP := codeFromPath(req)
	if errHTTP != nil {
		return nil, errHTTP.From("[codeFromPath]")
	}
	activities, errHTTP := action.resolve(req, []string{code})
	if errHTTP != nil {
		return nil, errHTTP.From("[resolve]")
	}
	return activities, nil
}

type GetCalendarICS struct {
	calendarLookup
	icsFeed
}

func (action GetCalendarICS) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	code, errHTTP := codeFromPath(req)
	if errHTTP != nil {
		errHTTP.From("[codeFromPath]").WriteResponse(w)
		return
	}
	activities, errHTTP := action.resolve(req, []string{code})
	if errHTTP != nil {
		errHTTP.From("[resolve]").WriteResponse(w)
		return
	}
	action.setCacheControl(w)
	action.write(w, code, activities)
}

type GetCalendars struct {
	calendarLookup
}

func (action GetCalendars) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp, errHTTP := action.getCalendars(req)
	if errHTTP != nil {
		errHTTP.From("[getCalendars]").WriteResponse(w)
		return
	}
	action.setCacheControl(w)
	mustWriteJSON(w, req, resp)
}

func (action GetCalendars) getCalendars(req *http.Request) (adexml.Activities, *herr.HTTPError) {
	codes, errHTTP := codesFromQuery(req)
	if errHTTP != nil {
		return nil, errHTTP.From("[codesFromQuery]")
	}
	activities, errHTTP := action.resolve(req, codes)
	if errHTTP != nil {
		return nil, errHTTP.From("[resolve]")
	}
	return activities, nil
}

type GetCalendarsICS struct {
	calendarLookup
	icsFeed
}

func (action GetCalendarsICS) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	codes, errHTTP := codesFromQuery(req)
	if errHTTP != nil {
		errHTTP.From("[codesFromQuery]").WriteResponse(w)
		return
	}
	activities, errHTTP := action.resolve(req, codes)
	if errHTTP != nil {
		errHTTP.From("[resolve]").WriteResponse(w)
		return
	}
	action.setCacheControl(w)
	action.write(w, strings.Join(codes, "-"), activities)
}

// resolve looks the codes up within the request timeout. Any failure is
// reported to the client as the same generic server error.
func (l calendarLookup) resolve(req *http.Request, codes []string) (adexml.Activities, *herr.HTTPError) {
	ctx := req.Context()
	if l.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.requestTimeout)
		defer cancel()
	}
	var activities adexml.Activities
	var err error
	if len(codes) == 1 {
		activities, err = l.resolver.Resolve(ctx, codes[0])
	} else {
		activities, err = l.resolver.ResolveMany(ctx, codes)
	}
	if err != nil {
		return nil, herr.InternalServerError("Failed to fetch calendar", err).From("[Resolve]")
	}
	return activities, nil
}

func (l calendarLookup) setCacheControl(w http.ResponseWriter) {
	if l.cacheControl <= 0 {
		w.Header().Set("Cache-Control", "no-cache")
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%v", l.cacheControl.Milliseconds()/1000))
}

func (f icsFeed) write(w http.ResponseWriter, name string, activities adexml.Activities) {
	cal := ics.Export(activities, ics.Options{
		ProdID:   f.prodID,
		Name:     name,
		Location: f.tz,
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".ics"))
	_, _ = w.Write([]byte(ics.Serialize(cal)))
}

func codeFromPath(req *http.Request) (string, *herr.HTTPError) {
	return validCode(req.PathValue("code"))
}

// codesFromQuery reads codes from repeated or comma-separated "code"
// parameters, e.g. ?code=LEPL1104&code=LINFO1252,LMECA1901.
func codesFromQuery(req *http.Request) ([]string, *herr.HTTPError) {
	var codes []string
	for _, param := range req.URL.Query()["code"] {
		for raw := range strings.SplitSeq(param, ",") {
			code, errHTTP := validCode(raw)
			if errHTTP != nil {
				return nil, errHTTP
			}
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, herr.BadRequest("No code was provided", nil).SetExpectedError()
	}
	if len(codes) > maxCodes {
		return nil, herr.BadRequest(fmt.Sprintf("At most %v codes may be requested at once", maxCodes), nil).
			SetExpectedError()
	}
	return codes, nil
}

func validCode(raw string) (string, *herr.HTTPError) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", herr.BadRequest("No code was provided", nil).SetExpectedError()
	}
	if len(code) > maxCodeLength {
		return "", herr.BadRequest("Code is too long", nil).SetExpectedError()
	}
	return code, nil
}
