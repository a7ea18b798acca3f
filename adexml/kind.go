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
	"regexp"
	"strings"
)

// Kind is the teaching format of an activity.
type Kind uint8

const (
	KindOther Kind = iota
	KindLecture
	KindPractical
	KindWrittenExam
	KindOralExam
)

var kindPrefixes = [...]string{
	KindOther:       "Other:",
	KindLecture:     "CM:",
	KindPractical:   "TP:",
	KindWrittenExam: "EXAM:",
	KindOralExam:    "ORAL:",
}

var kindNames = [...]string{
	KindOther:       "other",
	KindLecture:     "lecture",
	KindPractical:   "practical",
	KindWrittenExam: "writtenExam",
	KindOralExam:    "oralExam",
}

// Prefix is the short label put in front of event titles, e.g. "TP:".
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

func (k Kind) String() string {
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Activity names start with the course code, followed by a marker for
// the format: "LEPL1104-" for lectures, "LEPL1104_" for practicals,
// "LEPL1104=E" or "=P" for written exams, and "LEPL1104=O" for orals.
var (
	lectureName     = regexp.MustCompile(`(?i)[A-Z]+[0-9]+-`)
	practicalName   = regexp.MustCompile(`(?i)[A-Z]+[0-9]+_`)
	writtenExamName = regexp.MustCompile(`(?i)[A-Z]+[0-9]+=[EP]`)
	oralExamName    = regexp.MustCompile(`(?i)[A-Z]+[0-9]+=O`)
)

// ActivityKind classifies an activity from its name, falling back on
// the upstream type label when the name carries no format marker. The type
// label is not always accurate, which is why the name wins.
func ActivityKind(name, typeLabel string) Kind {
	switch {
	case lectureName.MatchString(name):
		return KindLecture
	case practicalName.MatchString(name):
		return KindPractical
	case writtenExamName.MatchString(name):
		return KindWrittenExam
	case oralExamName.MatchString(name):
		return KindOralExam
	}
	switch strings.TrimSpace(typeLabel) {
	case "Cours magistral":
		return KindLecture
	case "TP", "TD":
		return KindPractical
	case "Examen écrit", "Test / Interrogation / Partiel":
		return KindWrittenExam
	case "Examen oral":
		return KindOralExam
	default:
		return KindOther
	}
}
