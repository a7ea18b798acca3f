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

// Package calendar turns a course code into the activities scheduled for it.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/adexml"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"strings"
	"time"
)

// ErrNoUsableProject means upstream listed no project to look codes up in.
var ErrNoUsableProject = errors.New("no usable project")

// maxConcurrentCodes bounds the activity listings ResolveMany has in flight.
const maxConcurrentCodes = 4

// TokenSource hands out a token fit for the upstream listing calls.
type TokenSource interface {
	AcquireToken(ctx context.Context) (ade.Token, error)
}

// Upstream is the part of the ADE API the resolver needs.
type Upstream interface {
	ListProjects(ctx context.Context, token ade.Token) (adexml.Projects, error)
	ListResources(ctx context.Context, token ade.Token, projectID uint32) (adexml.Resources, error)
	ListActivities(ctx context.Context, token ade.Token, projectID uint32, resourceIDs []uint32) (adexml.Activities, error)
}

// Resolver looks up the calendar of a course code. It keeps no state between
// calls and is safe for concurrent use.
type Resolver struct {
	tokens        TokenSource
	upstream      Upstream
	selectProject ProjectSelector
}

// NewResolver creates a Resolver. A nil selector means FirstProject.
func NewResolver(tokens TokenSource, upstream Upstream, selector ProjectSelector) *Resolver {
	if selector == nil {
		selector = FirstProject
	}
	return &Resolver{
		tokens:        tokens,
		upstream:      upstream,
		selectProject: selector,
	}
}

// Resolve returns every activity of the resources whose name is code, ignoring
// case. A code that matches nothing is not an error: upstream is asked for the
// activities of no resource at all, and whatever it answers is returned.
//
// Either the complete result or an error is returned, never a partial result.
func (r *Resolver) Resolve(ctx context.Context, code string) (adexml.Activities, error) {
	start := time.Now()
	tok, project, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := r.upstream.ListResources(ctx, tok, project.ID)
	if err != nil {
		return nil, fmt.Errorf("[ListResources]: %w", err)
	}
	ids := MatchResources(resources, code)
	if len(ids) == 0 {
		slog.InfoContext(ctx, "Code matched no resource", "code", code, "project", project.Name)
	}
	activities, err := r.upstream.ListActivities(ctx, tok, project.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("[ListActivities]: %w", err)
	}
	slog.DebugContext(ctx, "Resolved code",
		"code", code,
		"project", project.Name,
		"resources", len(ids),
		"activities", len(activities),
		"duration", time.Since(start),
	)
	return activities, nil
}

// ResolveMany resolves several codes against the same token and project, and
// concatenates their activities in the order of codes.
func (r *Resolver) ResolveMany(ctx context.Context, codes []string) (adexml.Activities, error) {
	tok, project, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := r.upstream.ListResources(ctx, tok, project.ID)
	if err != nil {
		return nil, fmt.Errorf("[ListResources]: %w", err)
	}

	results := make([]adexml.Activities, len(codes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentCodes)
	for i, code := range codes {
		group.Go(func() error {
			activities, err := r.upstream.ListActivities(groupCtx, tok, project.ID, MatchResources(resources, code))
			if err != nil {
				return fmt.Errorf("[ListActivities] %v: %w", code, err)
			}
			results[i] = activities
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}

	out := adexml.Activities{}
	for _, activities := range results {
		out = append(out, activities...)
	}
	return out, nil
}

func (r *Resolver) prepare(ctx context.Context) (ade.Token, adexml.Project, error) {
	tok, err := r.tokens.AcquireToken(ctx)
	if err != nil {
		return ade.Token{}, adexml.Project{}, fmt.Errorf("[AcquireToken]: %w", err)
	}
	projects, err := r.upstream.ListProjects(ctx, tok)
	if err != nil {
		return ade.Token{}, adexml.Project{}, fmt.Errorf("[ListProjects]: %w", err)
	}
	project, ok := r.selectProject(projects)
	if !ok {
		return ade.Token{}, adexml.Project{}, ErrNoUsableProject
	}
	return tok, project, nil
}

// MatchResources returns the ids of the resources named code, compared in
// upper case, in listing order.
func MatchResources(resources adexml.Resources, code string) []uint32 {
	code = strings.ToUpper(code)
	var matched adexml.Resources
	for _, res := range resources {
		if strings.ToUpper(res.Name) == code {
			matched = append(matched, res)
		}
	}
	return matched.IDs()
}
