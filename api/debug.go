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
	"bytes"
	"fmt"
	"github.com/ade-scheduler/adecal/lib/format"
	"log/slog"
	"net/http"
	"runtime/debug"
	"runtime/metrics"
	"strings"
	"sync"
)

type GetBuildInfo struct{}

type GetRuntimeMetrics struct{}

func (action GetBuildInfo) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	bi := buildInfo()
	w.Header().Set("Cache-Control", "no-cache")
	http.Error(w, bi.String(), http.StatusOK)
}

var buildInfo = sync.OnceValue[debug.BuildInfo](func() debug.BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if ok {
		return *bi
	}
	slog.Info("Build info was unavailable, so an empty placeholder will be used instead")
	return debug.BuildInfo{}
})

func (action GetRuntimeMetrics) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.Error(w, runtimeMetrics(), http.StatusOK)
}

// runtimeMetrics renders one line per runtime metric. Byte counts are
// printed in human units, and histograms are reduced to their median bucket.
func runtimeMetrics() string {
	var samples []metrics.Sample
	for _, d := range metrics.All() {
		if strings.HasPrefix(d.Name, "/godebug/non-default-behavior/") {
			continue
		}
		// deprecated alias of /sched/pauses/total/gc:seconds
		if d.Name == "/gc/pauses:seconds" {
			continue
		}
		samples = append(samples, metrics.Sample{Name: d.Name})
	}
	metrics.Read(samples)

	var buf bytes.Buffer
	for _, sample := range samples {
		name, value := sample.Name, sample.Value
		switch value.Kind() {
		case metrics.KindUint64:
			if strings.HasSuffix(name, ":bytes") {
				_, _ = fmt.Fprintf(&buf, "%s: %s\n", name, format.HumanByteSize(int64(value.Uint64())))
				continue
			}
			_, _ = fmt.Fprintf(&buf, "%s: %d\n", name, value.Uint64())
		case metrics.KindFloat64:
			_, _ = fmt.Fprintf(&buf, "%s: %f\n", name, value.Float64())
		case metrics.KindFloat64Histogram:
			_, _ = fmt.Fprintf(&buf, "%s: %f\n", name, medianBucket(value.Float64Histogram()))
		default:
			_, _ = fmt.Fprintf(&buf, "%s: unexpected metric Kind: %v\n", name, value.Kind())
		}
	}
	return buf.String()
}

func medianBucket(h *metrics.Float64Histogram) float64 {
	total := uint64(0)
	for _, count := range h.Counts {
		total += count
	}
	if total == 0 || len(h.Buckets) == 0 {
		return 0
	}
	thresh := total / 2
	total = 0
	for i, count := range h.Counts {
		total += count
		if total >= thresh {
			return h.Buckets[i]
		}
	}
	return h.Buckets[len(h.Buckets)-1]
}
