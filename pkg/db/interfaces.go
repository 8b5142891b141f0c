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

package db

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/routeradar/pkg/db Service

import (
	"context"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// Service represents all storage operations the monitoring core needs.
type Service interface {
	Close() error

	// Device operations.

	ListDevices(ctx context.Context) ([]models.Device, error)
	GetDevice(ctx context.Context, deviceID int64) (*models.Device, error)
	GetCredentials(ctx context.Context, deviceID int64) (models.Credentials, error)
	// ListDeviceRecipients returns the owner followed by every assigned user.
	ListDeviceRecipients(ctx context.Context, deviceID int64) ([]int64, error)
	UpdateReachability(ctx context.Context, deviceID int64, reachable bool, checkedAt time.Time) error
	UpdateConnectionMethod(ctx context.Context, deviceID int64, method models.ConnectionMethod) error
	UpdateDiscoveredHostname(ctx context.Context, deviceID int64, hostname string) error

	// Interface operations.

	ListMonitoredInterfaces(ctx context.Context, deviceID int64) ([]models.MonitoredInterface, error)
	// UpsertInterfaceMeta refreshes cached metadata of the monitored
	// interfaces named in metas. Unknown names are ignored.
	UpsertInterfaceMeta(ctx context.Context, deviceID int64, metas []models.InterfaceMeta) error

	// Traffic operations.

	InsertSamples(ctx context.Context, samples []models.TrafficSample) error
	// QueryTraffic returns samples in [Start, End). A non-zero Bucket
	// averages them into buckets of that width.
	QueryTraffic(ctx context.Context, q models.TrafficQuery) ([]models.TrafficSample, error)
	DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Alert operations.

	CreateAlert(ctx context.Context, alert *models.Alert) (int64, error)
	// GetOpenAlert returns the unacknowledged alert for a condition key, or
	// nil when there is none.
	GetOpenAlert(ctx context.Context, conditionKey string) (*models.Alert, error)
	AcknowledgeAlert(ctx context.Context, alertID int64, actor string, at time.Time) error
}
