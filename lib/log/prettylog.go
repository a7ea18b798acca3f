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

// Package log provides a slog.Handler for humans reading a console: one line
// per record, with a colored level, the message and the attributes as JSON.
package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

const (
	reset = "\033[0m"

	red       = 31
	yellow    = 33
	blue      = 34
	magenta   = 35
	lightGray = 37
	white     = 97

	timeFormat = "[15:04:05.000]"
)

func colorize(colorCode int, v string) string {
	return "\033[" + strconv.Itoa(colorCode) + "m" + v + reset
}

// Handler is a slog.Handler that writes lines such as
//
//	[15:04:05.000] INFO: Resolved code {"code":"LEPL1104","activities":12}
//
// Each record is written with a single Write call.
type Handler struct {
	h                slog.Handler
	r                func([]string, slog.Attr) slog.Attr
	b                *bytes.Buffer
	m                *sync.Mutex
	writer           io.Writer
	colorize         bool
	outputEmptyAttrs bool
}

type Option func(h *Handler)

// WithDestinationWriter sends the output somewhere other than os.Stdout.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *Handler) {
		h.writer = writer
	}
}

// WithColor turns ANSI colors on or off. They are on by default.
func WithColor(on bool) Option {
	return func(h *Handler) {
		h.colorize = on
	}
}

// WithOutputEmptyAttrs writes "{}" for records with no attributes, rather
// than nothing.
func WithOutputEmptyAttrs() Option {
	return func(h *Handler) {
		h.outputEmptyAttrs = true
	}
}

// NewHandler creates a Handler writing to os.Stdout unless an Option says
// otherwise. A nil opts means the slog defaults.
func NewHandler(opts *slog.HandlerOptions, options ...Option) *Handler {
	return New(opts, options...)
}

func New(handlerOptions *slog.HandlerOptions, options ...Option) *Handler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}
	buf := &bytes.Buffer{}
	handler := &Handler{
		b: buf,
		h: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressDefaults(handlerOptions.ReplaceAttr),
		}),
		r:        handlerOptions.ReplaceAttr,
		m:        &sync.Mutex{},
		writer:   os.Stdout,
		colorize: true,
	}
	for _, opt := range options {
		opt(handler)
	}
	return handler
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.clone(h.h.WithAttrs(attrs))
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h.clone(h.h.WithGroup(name))
}

func (h *Handler) clone(inner slog.Handler) *Handler {
	c := *h
	c.h = inner
	return &c
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("requestID", id))
	}
	attrs, err := h.attrsJSON(ctx, r)
	if err != nil {
		return err
	}

	var timestamp string
	if !r.Time.IsZero() {
		timestamp = r.Time.Format(timeFormat)
	}
	levelAndMsg := h.levelName(r.Level) + " " + r.Message
	if h.colorize {
		if timestamp != "" {
			timestamp = colorize(lightGray, timestamp)
		}
		levelAndMsg = colorize(levelColor(r.Level), levelAndMsg)
	}

	out := bytes.Buffer{}
	if timestamp != "" {
		out.WriteString(timestamp)
		out.WriteString(" ")
	}
	out.WriteString(levelAndMsg)
	if h.outputEmptyAttrs || !bytes.Equal(attrs, []byte("{}")) {
		out.WriteString(" ")
		out.Write(attrs)
	}
	out.WriteString("\n")

	_, err = h.writer.Write(out.Bytes())
	return err
}

func (h *Handler) levelName(l slog.Level) string {
	if h.r != nil {
		return h.r(nil, slog.Any(slog.LevelKey, l)).Value.String() + ":"
	}
	return l.String() + ":"
}

func levelColor(l slog.Level) int {
	switch {
	case l <= slog.LevelDebug:
		return lightGray
	case l <= slog.LevelInfo:
		return blue
	case l < slog.LevelWarn:
		return white
	case l < slog.LevelError:
		return yellow
	case l <= slog.LevelError:
		return red
	default:
		return magenta
	}
}

// attrsJSON runs the record through the inner JSON handler, which has been
// told to drop the time, level and message.
func (h *Handler) attrsJSON(ctx context.Context, r slog.Record) ([]byte, error) {
	h.m.Lock()
	defer func() {
		h.b.Reset()
		h.m.Unlock()
	}()
	if err := h.h.Handle(ctx, r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(bytes.Clone(h.b.Bytes()), []byte("\n")), nil
}

func suppressDefaults(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey) {
			return slog.Attr{}
		}
		if next == nil {
			return a
		}
		return next(groups, a)
	}
}

type requestIDKey struct{}

// WithRequestID returns a context whose log records carry the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var _ slog.Handler = (*Handler)(nil)
