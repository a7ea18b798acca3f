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

package conf

import (
	"errors"
	"fmt"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/lib/redact"
	"github.com/robfig/cron/v3"
	"time"
)

// Default is the base configuration of the server. It gets overridden by
// values in the .env file, then by environment variables.
func Default() *AppConfig {
	return &AppConfig{
		Core: ConfigCore{
			Host:            "localhost",
			Port:            8080,
			Deployment:      DeploymentTypeDev,
			LogLevel:        "INFO",
			CacheControl:    5 * time.Minute,
			MaxRequestBytes: 1 << 20,
			RequestTimeout:  30 * time.Second,
		},
		ADE: ADE{
			APIEndpoint:   "ade/v0",
			TokenEndpoint: "token",
			HTTPTimeout:   30 * time.Second,
		},
		TokenCache: TokenCache{
			Type: TokenCacheTypeMemory,
			Key:  "ade-token",
			Redis: Redis{
				Addr: "localhost:6379",
			},
			WarmTimeout: 30 * time.Second,
		},
		Calendar: Calendar{
			ProjectSelection: ProjectSelectionFirst,
			Timezone:         "Europe/Brussels",
			ProdID:           "-//adecal//ADE calendar//EN",
		},
	}
}

// Validate should be called after an AppConfig has been fully configured.
func (c *AppConfig) Validate() error {
	var errs []error
	errs = append(errs, c.Core.Deployment.Validate())
	errs = append(errs, c.TokenCache.Type.Validate())
	errs = append(errs, c.Calendar.ProjectSelection.Validate())
	if c.ADE.URL == "" {
		errs = append(errs, errors.New("ADE URL is required"))
	}
	if c.ADE.TokenEndpoint == "" {
		errs = append(errs, errors.New("ADE token endpoint is required"))
	}
	if c.TokenCache.Type == TokenCacheTypeRedis {
		if c.TokenCache.Redis.Addr == "" {
			errs = append(errs, errors.New("redis token cache requires an address"))
		}
	} else {
		c.TokenCache.Redis = Redis{}
	}
	if c.TokenCache.Key == "" {
		errs = append(errs, errors.New("token cache key must not be empty"))
	}
	if c.TokenCache.WarmSchedule != "" {
		if _, err := cron.ParseStandard(c.TokenCache.WarmSchedule); err != nil {
			errs = append(errs, fmt.Errorf("bad token warm schedule %q: %w", c.TokenCache.WarmSchedule, err))
		}
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("bad calendar timezone: %w", err))
	}
	if c.Core.MaxRequestBytes <= 0 {
		errs = append(errs, errors.New("max request bytes must be positive"))
	}
	return errors.Join(errs...)
}

func (c *AppConfig) PrintRedacted() string {
	return c.String()
}

func (c *AppConfig) String() string {
	b, err := redact.ToBytes(c)
	if err != nil {
		return fmt.Sprintf("failed to print config: %v", err)
	}
	return string(b)
}

type AppConfig struct {
	Core       ConfigCore
	ADE        ADE
	TokenCache TokenCache
	Calendar   Calendar
}

type DeploymentType string

type TokenCacheType string

type ProjectSelection string

const (
	DeploymentTypeDev        DeploymentType   = "dev"
	DeploymentTypeStaging    DeploymentType   = "staging"
	DeploymentTypeProduction DeploymentType   = "production"
	TokenCacheTypeRedis      TokenCacheType   = "redis"
	TokenCacheTypeMemory     TokenCacheType   = "memory"
	ProjectSelectionFirst    ProjectSelection = "first"
	ProjectSelectionLatest   ProjectSelection = "latest"
)

func (d DeploymentType) Validate() error {
	switch d {
	case DeploymentTypeDev, DeploymentTypeStaging, DeploymentTypeProduction:
		return nil
	default:
		return fmt.Errorf("unknown deployment type %v", d)
	}
}

func (t TokenCacheType) Validate() error {
	switch t {
	case TokenCacheTypeRedis, TokenCacheTypeMemory:
		return nil
	default:
		return fmt.Errorf("unknown token cache type %v", t)
	}
}

func (p ProjectSelection) Validate() error {
	switch p {
	case ProjectSelectionFirst, ProjectSelectionLatest:
		return nil
	default:
		return fmt.Errorf("unknown project selection %v", p)
	}
}

type ConfigCore struct {
	Host       string
	Port       int32
	Deployment DeploymentType

	// LogLevel should be one of DEBUG, INFO, WARN, or ERROR
	LogLevel string

	// CacheControl is the max-age set on calendar responses. Timetables change
	// a few times per term at most. Set this to 0 to disable client-side caching.
	CacheControl time.Duration

	// MaxRequestBytes is a hard limit on request sizes that will be permitted by the API server.
	MaxRequestBytes int64

	// RequestTimeout bounds the whole resolution of one calendar, upstream calls included.
	RequestTimeout time.Duration
}

type ADE struct {
	// CredentialsFile is an optional YAML file holding the fields below.
	CredentialsFile string
	URL             string
	Data            string `redact:"true"`
	Authorization   string `redact:"true"`
	APIEndpoint     string
	TokenEndpoint   string
	HTTPTimeout     time.Duration
}

// Credentials returns what the ADE client needs to authenticate.
func (a ADE) Credentials() ade.Credentials {
	return ade.Credentials{
		URL:           a.URL,
		Data:          a.Data,
		Authorization: a.Authorization,
		Endpoints: ade.Endpoints{
			API:   a.APIEndpoint,
			Token: a.TokenEndpoint,
		},
	}
}

// ApplyCredentials overwrites the ADE connection fields with the non-empty
// values of creds.
func (a *ADE) ApplyCredentials(creds ade.Credentials) {
	for dst, src := range map[*string]string{
		&a.URL:           creds.URL,
		&a.Data:          creds.Data,
		&a.Authorization: creds.Authorization,
		&a.APIEndpoint:   creds.Endpoints.API,
		&a.TokenEndpoint: creds.Endpoints.Token,
	} {
		if src != "" {
			*dst = src
		}
	}
}

type TokenCache struct {
	Type  TokenCacheType
	Key   string
	Redis Redis

	// WarmSchedule is a cron schedule, e.g. "@every 10m", on which the token is
	// refreshed ahead of requests. Empty means no warming.
	WarmSchedule string
	WarmTimeout  time.Duration
}

type Redis struct {
	Addr     string
	Password string `redact:"true"`
	DB       int
}

type Calendar struct {
	ProjectSelection ProjectSelection
	// Timezone is the IANA name of the zone the upstream times are in.
	Timezone string
	ProdID   string
}

// Location loads the Timezone. Validate has already checked that it exists.
func (c Calendar) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("[LoadLocation]: %w", err)
	}
	return loc, nil
}
