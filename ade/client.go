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

// Package ade is a client for the read-only parts of the ADE scheduling API
// that are needed to build calendars: token exchange, and the projects,
// resources and activities listings.
package ade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ade-scheduler/adecal/adexml"
	"github.com/ade-scheduler/adecal/lib/conv"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Query parameters of the listing calls. The detail levels are the smallest
// that still carry the attributes adexml decodes.
const (
	projectsDetail   = "2"
	resourcesDetail  = "3"
	activitiesDetail = "17"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Client talks to the upstream API. It holds no per-request state and is
// safe for concurrent use. Nothing is retried here; callers own that policy.
type Client struct {
	httpClient  *http.Client
	credentials Credentials
}

// NewClient builds a Client. If httpClient is nil, a client with a
// 30 second timeout is used.
func NewClient(credentials Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		credentials: credentials,
	}
}

type tokenEnvelope struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// AcquireToken exchanges the static credentials for a new access token.
func (c *Client) AcquireToken(ctx context.Context) (Token, error) {
	tokenURL, err := url.JoinPath(c.credentials.URL, c.credentials.Endpoints.Token)
	if err != nil {
		return Token{}, fmt.Errorf("[JoinPath]: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(c.credentials.Data))
	if err != nil {
		return Token{}, fmt.Errorf("[NewRequestWithContext]: %w", err)
	}
	req.Header.Set("Authorization", c.credentials.Authorization)

	body, status, err := c.do(req, "token")
	if err != nil {
		return Token{}, err
	}
	if status >= 400 && status < 500 {
		return Token{}, &UpstreamAuthError{Status: status, Body: truncate(body)}
	}
	if status < 200 || status > 299 {
		return Token{}, &TransportError{Op: "token", Status: status, Body: truncate(body)}
	}

	var env tokenEnvelope
	if err = json.Unmarshal(body, &env); err != nil {
		return Token{}, &TokenDecodeError{Err: err}
	}
	if env.AccessToken == "" {
		return Token{}, &TokenDecodeError{Err: errors.New("access_token is empty")}
	}
	expiresIn, err := conv.ParseUint32(env.ExpiresIn.String())
	if err != nil {
		return Token{}, &TokenDecodeError{Err: fmt.Errorf("expires_in: %w", err)}
	}
	return Token{AccessToken: env.AccessToken, ExpiresIn: expiresIn}, nil
}

// ListProjects lists the projects, i.e. academic years, known upstream.
func (c *Client) ListProjects(ctx context.Context, token Token) (adexml.Projects, error) {
	body, err := c.get(ctx, token, "projects",
		url.Values{"detail": {projectsDetail}},
		"projects",
	)
	if err != nil {
		return nil, err
	}
	projects, err := adexml.DecodeProjects(body)
	if err != nil {
		return nil, fmt.Errorf("[DecodeProjects]: %w", err)
	}
	return projects, nil
}

// ListResources lists every resource of a project.
func (c *Client) ListResources(ctx context.Context, token Token, projectID uint32) (adexml.Resources, error) {
	body, err := c.get(ctx, token, "resources",
		url.Values{"tree": {"false"}, "detail": {resourcesDetail}},
		"projects", conv.FormatInt(projectID), "resources",
	)
	if err != nil {
		return nil, err
	}
	resources, err := adexml.DecodeResources(body)
	if err != nil {
		return nil, fmt.Errorf("[DecodeResources]: %w", err)
	}
	return resources, nil
}

// ListActivities lists the activities of a project that involve any of the
// given resources, with their events and participants.
func (c *Client) ListActivities(
	ctx context.Context, token Token, projectID uint32, resourceIDs []uint32,
) (adexml.Activities, error) {
	body, err := c.get(ctx, token, "activities",
		url.Values{
			"tree":      {"false"},
			"detail":    {activitiesDetail},
			"resources": {JoinIDs(resourceIDs)},
		},
		"projects", conv.FormatInt(projectID), "activities",
	)
	if err != nil {
		return nil, err
	}
	activities, err := adexml.DecodeActivities(body)
	if err != nil {
		return nil, fmt.Errorf("[DecodeActivities]: %w", err)
	}
	return activities, nil
}

// JoinIDs serializes resource ids the way upstream filters expect them,
// e.g. "12|42|7".
func JoinIDs(ids []uint32) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, conv.FormatInt(id))
	}
	return strings.Join(parts, "|")
}

func (c *Client) get(ctx context.Context, token Token, op string, query url.Values, path ...string) ([]byte, error) {
	endpoint, err := url.JoinPath(c.credentials.URL, append([]string{c.credentials.Endpoints.API}, path...)...)
	if err != nil {
		return nil, fmt.Errorf("[JoinPath]: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("[NewRequestWithContext]: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	body, status, err := c.do(req, op)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &TransportError{Op: op, Status: status, Body: truncate(body)}
	}
	return body, nil
}

func (c *Client) do(req *http.Request, op string) (body []byte, status int, err error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer shut(resp.Body)
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: fmt.Errorf("[io.ReadAll]: %w", err)}
	}
	slog.Debug("ADE request done",
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return body, resp.StatusCode, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}

func shut(c io.Closer) {
	err := c.Close()
	if err != nil {
		slog.Error("Failed to close Closer", "error", err)
	}
}
