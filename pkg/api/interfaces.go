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

package api

//go:generate mockgen -destination=mock_api.go -package=api github.com/mfreeman451/routeradar/pkg/api Authenticator,Monitor,TrafficSource

import (
	"context"
	"time"

	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/scheduler"
	"github.com/mfreeman451/routeradar/pkg/traffic"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// Monitor is the part of the scheduler the API drives.
type Monitor interface {
	Subscribe(ctx context.Context, deviceID int64, sub scheduler.Subscriber) error
	Unsubscribe(deviceID int64, subID string) bool
	UnsubscribeAll(subID string) int
	TestConnection(ctx context.Context, deviceID int64) (*device.Discovery, error)
}

// TrafficSource answers historical traffic queries.
type TrafficSource interface {
	Query(ctx context.Context, deviceID int64, iface string, start, end time.Time) (*traffic.Result, error)
}
