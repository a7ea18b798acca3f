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

package calendar

import (
	"fmt"
	"github.com/ade-scheduler/adecal/adexml"
)

// ProjectSelector picks the project to resolve codes in. It reports false
// when none of the projects will do.
type ProjectSelector func(projects adexml.Projects) (adexml.Project, bool)

// FirstProject picks the first project upstream lists.
func FirstProject(projects adexml.Projects) (adexml.Project, bool) {
	if len(projects) == 0 {
		return adexml.Project{}, false
	}
	return projects[0], true
}

// LatestProject picks the project with the greatest name. Projects are named
// after their academic year ("2023-2024"), so that is the most recent one.
// On a tie, the first listed wins.
func LatestProject(projects adexml.Projects) (adexml.Project, bool) {
	if len(projects) == 0 {
		return adexml.Project{}, false
	}
	latest := projects[0]
	for _, p := range projects[1:] {
		if p.Name > latest.Name {
			latest = p
		}
	}
	return latest, true
}

// SelectorByName returns the selector called name, "first" or "latest".
func SelectorByName(name string) (ProjectSelector, error) {
	switch name {
	case "", "first":
		return FirstProject, nil
	case "latest":
		return LatestProject, nil
	default:
		return nil, fmt.Errorf("unknown project selector %q", name)
	}
}
