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

// Package redact prints configuration structs for humans, hiding the fields
// tagged `redact:"true"`.
package redact

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

const (
	nestIndent  = "    "
	hiddenValue = "🤐🤐🤐"
	hiddenList  = "[🤐🤐🤐🤐]"
	hiddenNest  = "🤐🤐🤐🤐🤐"
)

// ToBytes renders the struct pointed to as one "Name = value" line per field,
// descending into nested structs, slices of structs and pointers.
func ToBytes(pointerToStruct any) ([]byte, error) {
	output := &bytes.Buffer{}
	p := printer{w: output}
	if err := p.fields(reflect.ValueOf(pointerToStruct).Elem(), ""); err != nil {
		return nil, fmt.Errorf("[fields]: %w", err)
	}
	return output.Bytes(), nil
}

type printer struct {
	w io.Writer
}

func (p printer) line(indent, format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, indent+format+"\n", args...)
	return err
}

func (p printer) fields(v reflect.Value, indent string) error {
	typeOfT := v.Type()
	for i := range v.NumField() {
		field := typeOfT.Field(i)
		if !field.IsExported() {
			continue
		}
		redact := strings.EqualFold(field.Tag.Get("redact"), "true")
		if err := p.value(field.Name, v.Field(i), redact, indent); err != nil {
			return err
		}
	}
	return nil
}

func (p printer) value(name string, f reflect.Value, redact bool, indent string) error {
	switch f.Kind() {
	case reflect.Pointer:
		if f.IsNil() {
			return p.line(indent, "%v = <nil>", name)
		}
		return p.value(name, f.Elem(), redact, indent)
	case reflect.Struct:
		if s, ok := f.Interface().(fmt.Stringer); ok {
			return p.scalar(name, s, redact, indent)
		}
		if err := p.line(indent, "%v", name); err != nil {
			return err
		}
		if redact {
			return p.line(indent+nestIndent, hiddenNest)
		}
		return p.fields(f, indent+nestIndent)
	case reflect.Slice:
		return p.slice(name, f, redact, indent)
	case reflect.Map:
		return p.mapping(name, f, redact, indent)
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return p.scalar(name, f.Interface(), redact, indent)
	default:
		return fmt.Errorf("unsupported field kind: %v", f.Kind().String())
	}
}

func (p printer) scalar(name string, val any, redact bool, indent string) error {
	if redact {
		return p.line(indent, "%v = %v", name, hiddenValue)
	}
	return p.line(indent, "%v = %v", name, val)
}

func (p printer) slice(name string, f reflect.Value, redact bool, indent string) error {
	if f.Type().Elem().Kind() != reflect.Struct {
		if redact {
			return p.line(indent, "%v = %v", name, hiddenList)
		}
		return p.line(indent, "%v = %v", name, f.Interface())
	}
	for j := range f.Len() {
		if err := p.line(indent, "%v[%d]", name, j); err != nil {
			return err
		}
		var err error
		if redact {
			err = p.line(indent+nestIndent, "🤐🤐")
		} else {
			err = p.fields(f.Index(j), indent+nestIndent)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// mapping prints the entries of a string-keyed map in key order. The values
// of a redacted map are hidden but its keys are not.
func (p printer) mapping(name string, f reflect.Value, redact bool, indent string) error {
	if f.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("unsupported map key kind: %v", f.Type().Key().Kind().String())
	}
	keys := make([]string, 0, f.Len())
	for _, k := range f.MapKeys() {
		keys = append(keys, k.String())
	}
	slices.Sort(keys)
	if err := p.line(indent, "%v", name); err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.value(k, f.MapIndex(reflect.ValueOf(k).Convert(f.Type().Key())), redact, indent+nestIndent); err != nil {
			return err
		}
	}
	return nil
}
