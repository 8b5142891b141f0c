/*
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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "warn"})
	require.NoError(t, err)

	zl := l.(*zerologLogger).zl
	assert.Equal(t, zerolog.WarnLevel, zl.GetLevel())
}

func TestNewDebugOverridesLevel(t *testing.T) {
	l, err := New(Config{Level: "error", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, l.(*zerologLogger).zl.GetLevel())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestSetDebug(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)

	l.SetDebug(true)
	assert.Equal(t, zerolog.DebugLevel, l.(*zerologLogger).zl.GetLevel())

	l.SetDebug(false)
	assert.Equal(t, zerolog.InfoLevel, l.(*zerologLogger).zl.GetLevel())
}

func TestWithComponent(t *testing.T) {
	l := GetLogger().WithComponent("scheduler")
	assert.NotNil(t, l)
	assert.NotEqual(t, zerolog.Disabled, l.(*zerologLogger).zl.GetLevel())
}
