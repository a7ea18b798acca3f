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

package cmd

import (
	"fmt"
	"github.com/ade-scheduler/adecal/ade"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/lib/conv"
	"github.com/joho/godotenv"
	"log/slog"
	"os"
	"strings"
	"time"
)

// mustInitConfig builds the configuration from the defaults, the .env file
// and ENV variables.
func mustInitConfig(envFileName string) *conf.AppConfig {
	return mustApplyEnvConfig(conf.Default(), envFileName)
}

// mustApplyEnvConfig reads in the .env file and ENV variables and applies those to baseCfg.
//
// ADE credentials are read from ADECAL_ADE_CREDENTIALS_FILE first, if set, so
// that the individual ADECAL_ADE_* variables can still override them.
func mustApplyEnvConfig(baseCfg *conf.AppConfig, envFileName string) *conf.AppConfig {
	err := godotenv.Load(envFileName)

	if err != nil && !os.IsNotExist(err) {
		must(err)
	}
	if os.IsNotExist(err) {
		// if it's not the default
		if envFileName != envFileDefaultName {
			must(fmt.Errorf("envfile '%v' was set by the caller, but the file was not found", envFileName))
		}
		slog.Info("No .env file found. Carrying on with config defaults and environment variable overrides")
	}

	if v, ok := lookupEnv("ADECAL_HOSTNAME"); ok {
		baseCfg.Core.Host = v
	}
	if v, ok := lookupEnv("ADECAL_PORT"); ok {
		baseCfg.Core.Port, err = conv.ParseInt32(v)
		must(err)
	}
	if v, ok := lookupEnv("ADECAL_DEPLOYMENT"); ok {
		baseCfg.Core.Deployment = conf.DeploymentType(strings.ToLower(v))
	}
	if v, ok := lookupEnv("ADECAL_LOG_LEVEL"); ok {
		baseCfg.Core.LogLevel = v
	}
	// Durations must be given with a time unit in the env variable,
	// e.g. "20s" or "5m10s".
	if v, ok := lookupEnv("ADECAL_CACHE_CONTROL"); ok {
		baseCfg.Core.CacheControl = mustParseDuration(v)
	}
	if v, ok := lookupEnv("ADECAL_REQUEST_TIMEOUT"); ok {
		baseCfg.Core.RequestTimeout = mustParseDuration(v)
	}
	if v, ok := lookupEnv("ADECAL_MAX_REQUEST_BYTES"); ok {
		baseCfg.Core.MaxRequestBytes, err = conv.ParseInt64(v)
		must(err)
	}

	if v, ok := lookupEnv("ADECAL_ADE_CREDENTIALS_FILE"); ok {
		creds, err := ade.LoadCredentialsFile(v)
		must(err)
		baseCfg.ADE.CredentialsFile = v
		baseCfg.ADE.ApplyCredentials(creds)
	}
	if v, ok := lookupEnv("ADECAL_ADE_URL"); ok {
		baseCfg.ADE.URL = v
	}
	if v, ok := lookupEnv("ADECAL_ADE_DATA"); ok {
		baseCfg.ADE.Data = v
	}
	if v, ok := lookupEnv("ADECAL_ADE_AUTHORIZATION"); ok {
		baseCfg.ADE.Authorization = v
	}
	if v, ok := lookupEnv("ADECAL_ADE_API_ENDPOINT"); ok {
		baseCfg.ADE.APIEndpoint = v
	}
	if v, ok := lookupEnv("ADECAL_ADE_TOKEN_ENDPOINT"); ok {
		baseCfg.ADE.TokenEndpoint = v
	}
	if v, ok := lookupEnv("ADECAL_ADE_HTTP_TIMEOUT"); ok {
		baseCfg.ADE.HTTPTimeout = mustParseDuration(v)
	}

	if v, ok := lookupEnv("ADECAL_TOKEN_CACHE"); ok {
		baseCfg.TokenCache.Type = conf.TokenCacheType(strings.ToLower(v))
	}
	if v, ok := lookupEnv("ADECAL_TOKEN_CACHE_KEY"); ok {
		baseCfg.TokenCache.Key = v
	}
	if v, ok := lookupEnv("ADECAL_REDIS_ADDR"); ok {
		baseCfg.TokenCache.Redis.Addr = v
	}
	if v, ok := lookupEnv("ADECAL_REDIS_PASSWORD"); ok {
		baseCfg.TokenCache.Redis.Password = v
	}
	if v, ok := lookupEnv("ADECAL_REDIS_DB"); ok {
		db, err := conv.ParseInt32(v)
		must(err)
		baseCfg.TokenCache.Redis.DB = int(db)
	}
	if v, ok := lookupEnv("ADECAL_TOKEN_WARM_SCHEDULE"); ok {
		baseCfg.TokenCache.WarmSchedule = v
	}
	if v, ok := lookupEnv("ADECAL_TOKEN_WARM_TIMEOUT"); ok {
		baseCfg.TokenCache.WarmTimeout = mustParseDuration(v)
	}

	if v, ok := lookupEnv("ADECAL_PROJECT_SELECTION"); ok {
		baseCfg.Calendar.ProjectSelection = conf.ProjectSelection(strings.ToLower(v))
	}
	if v, ok := lookupEnv("ADECAL_TIMEZONE"); ok {
		baseCfg.Calendar.Timezone = v
	}
	if v, ok := lookupEnv("ADECAL_ICS_PRODID"); ok {
		baseCfg.Calendar.ProdID = v
	}

	return baseCfg
}

func mustParseDuration(v string) time.Duration {
	dur, err := time.ParseDuration(v)
	must(err)
	return dur
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	// When doing `docker run --env-file .env`, Docker passes in vars without removing
	// the double-quotes, e.g. ADECAL_HOSTNAME="localhost" would actually get passed into
	// the program with the double-quotes in place.
	// https://github.com/docker/cli/issues/3630
	if len(v) >= 2 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") {
		v = v[1 : len(v)-1]
	}
	return v, true
}
