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

// Package format renders quantities for humans, e.g. in debug output.
package format

import (
	"fmt"
)

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// HumanByteSize renders a byte count with a binary unit and three
// significant digits, e.g. "1.91 MiB".
func HumanByteSize(numBytes int64) string {
	if numBytes < 0 {
		return "invalid"
	}
	if numBytes < 1<<10 {
		return fmt.Sprintf("%d B", numBytes)
	}
	size := float64(numBytes)
	unit := -1
	for size >= 1<<10 && unit < len(byteUnits)-1 {
		size /= 1 << 10
		unit++
	}
	return fmt.Sprintf("%.3g %s", size, byteUnits[unit])
}
