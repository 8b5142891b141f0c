/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the routeradar service configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override, e.g.
// ROUTERADAR_CREDENTIAL_KEY.
const EnvPrefix = "ROUTERADAR_"

// LoadFile reads the JSON file at path into dst.
func LoadFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// Load reads the service config at path, applies ROUTERADAR_* environment
// overrides and validates the result. Unknown keys are rejected so a
// misspelled interval never silently falls back to its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	return parse(data, os.LookupEnv)
}

func parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

type envOverride struct {
	name string
	set  func(c *Config, v string) error
}

func durationOverride(field func(c *Config) *Duration) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*field(c) = Duration(d)

		return nil
	}
}

// Secrets and deployment-specific addresses; everything else belongs in
// the file.
var envOverrides = []envOverride{
	{"LISTEN_ADDR", func(c *Config, v string) error { c.ListenAddr = v; return nil }},
	{"GRPC_ADDR", func(c *Config, v string) error { c.GRPCAddr = v; return nil }},
	{"DB_PATH", func(c *Config, v string) error { c.DBPath = v; return nil }},
	{"CREDENTIAL_KEY", func(c *Config, v string) error { c.CredentialKey = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = v; return nil }},
	{"DEBUG", func(c *Config, v string) error {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: debug: %w", errInvalidConfig, err)
		}

		c.Logging.Debug = debug

		return nil
	}},
	{"COLLECT_INTERVAL", durationOverride(func(c *Config) *Duration { return &c.CollectInterval })},
	{"REALTIME_INTERVAL", durationOverride(func(c *Config) *Duration { return &c.RealtimeInterval })},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok || v == "" {
			continue
		}

		if err := o.set(c, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, o.name, err)
		}
	}

	return nil
}
