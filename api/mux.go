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
	"fmt"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/lib/herr"
	"github.com/ade-scheduler/adecal/lib/log"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// AddToMux registers the API routes on mux, creating one if mux is nil.
func AddToMux(mux *http.ServeMux, cfg *conf.AppConfig, resolver Resolver, tz *time.Location) *http.ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}
	lookup := calendarLookup{
		resolver:       resolver,
		requestTimeout: cfg.Core.RequestTimeout,
		cacheControl:   cfg.Core.CacheControl,
	}
	feed := icsFeed{
		tz:     tz,
		prodID: cfg.Calendar.ProdID,
	}

	mux.Handle("GET /adecal/api/calendar/{code}",
		Adapt(
			GetCalendar{lookup},
			RecoverFromPanic(),
			LogRequest(),
			LimitRequestBytes(cfg.Core.MaxRequestBytes),
		),
	)

	mux.Handle("GET /adecal/api/calendar/{code}/ics",
		Adapt(
			GetCalendarICS{lookup, feed},
			RecoverFromPanic(),
			LogRequest(),
			LimitRequestBytes(cfg.Core.MaxRequestBytes),
		),
	)

	mux.Handle("GET /adecal/api/calendars",
		Adapt(
			GetCalendars{lookup},
			RecoverFromPanic(),
			LogRequest(),
			LimitRequestBytes(cfg.Core.MaxRequestBytes),
		),
	)

	mux.Handle("GET /adecal/api/calendars/ics",
		Adapt(
			GetCalendarsICS{lookup, feed},
			RecoverFromPanic(),
			LogRequest(),
			LimitRequestBytes(cfg.Core.MaxRequestBytes),
		),
	)

	// Debug internals are only exposed outside of production.
	if cfg.Core.Deployment != conf.DeploymentTypeProduction {
		mux.Handle("GET /adecal/api/debug/buildinfo",
			Adapt(
				GetBuildInfo{},
				RecoverFromPanic(),
				LogRequest(),
			),
		)
		mux.Handle("GET /adecal/api/debug/runtime",
			Adapt(
				GetRuntimeMetrics{},
				RecoverFromPanic(),
				LogRequest(),
			),
		)
	}

	return AddBasicHandlers(mux)
}

// AddBasicHandlers registers the routes that need no dependencies, such as
// the ping used by health checks.
func AddBasicHandlers(mux *http.ServeMux) *http.ServeMux {
	if mux == nil {
		mux = http.NewServeMux()
	}

	mux.HandleFunc("GET /adecal/api/ping",
		func(w http.ResponseWriter, req *http.Request) {
			herr.WriteOKResponse(w, "ack")
		},
	)

	return mux
}

type Adapter func(http.Handler) http.Handler

// responseWriter is a wrapper around http.ResponseWriter that lets us
// capture details about the response.
type responseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func LimitRequestBytes(maxRequestBytes int64) Adapter {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, maxRequestBytes)
	}
}

// LogRequest gives every request an id, returned in the X-Request-Id header
// and attached to every log record written while serving it. A client may
// supply its own id, as long as it is a UUID.
func LogRequest() Adapter {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(herr.RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(herr.RequestIDHeader, requestID)
			ctx := log.WithRequestID(r.Context(), requestID)
			writ := &responseWriter{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(writ, r.WithContext(ctx))

			durationMS := float64(time.Since(start).Microseconds()) / 1000.0
			slog.DebugContext(ctx, fmt.Sprintf("Served request for: %v %v", r.Method, r.URL.Path),
				"duration", fmt.Sprintf("%.3fms", durationMS),
				"method", r.Method,
				"code", writ.code,
				"bytes", writ.bytes,
				"remote-addr", r.RemoteAddr,
				"build", buildInfo().Main.Version,
			)
		})
	}
}

func RecoverFromPanic() Adapter {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					slog.ErrorContext(r.Context(), "Recovered from panic", "err", err)
					debug.PrintStack()
					herr.InternalServerError("The server malfunctioned", fmt.Errorf("panic: %v", err)).
						WriteResponse(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Adapt(handler http.Handler, adapters ...Adapter) http.Handler {
	for i := len(adapters) - 1; i >= 0; i-- {
		handler = adapters[i](handler)
	}
	return handler
}
