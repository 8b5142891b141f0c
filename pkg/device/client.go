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

// Package device talks to routers over the RouterOS API, the RouterOS REST
// API or SNMP and turns their cumulative interface counters into rates.
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
)

const (
	defaultProtocolTimeout = 10 * time.Second
	defaultProbeTimeout    = 2 * time.Second
)

// Attempt is the outcome of trying one protocol during discovery.
type Attempt struct {
	Method   models.ConnectionMethod `json:"method"`
	Identity string                  `json:"identity,omitempty"`
	Err      error                   `json:"-"`
}

// Discovery is the result of Client.Discover. A failed discovery is a
// normal outcome: Method stays unset and Attempts says why.
type Discovery struct {
	Method   models.ConnectionMethod `json:"method"`
	Identity string                  `json:"identity,omitempty"`
	Attempts []Attempt               `json:"attempts"`
}

// OK reports whether some protocol answered.
func (d *Discovery) OK() bool {
	return d.Method != models.MethodUnset
}

// InterfaceStats pairs a reported interface with the rate derived from it.
type InterfaceStats struct {
	Info   models.InterfaceInfo
	Sample models.TrafficSample
}

// FetchResult is everything learned from one stats round trip.
type FetchResult struct {
	Method             models.ConnectionMethod
	At                 time.Time
	Interfaces         []InterfaceStats
	DiscoveredHostname string
}

// Client queries a single device.
type Client struct {
	device  *models.Device
	creds   models.Credentials
	rates   *CounterCache
	factory Factory
	prober  *Prober
	now     func() time.Time
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithFactory(f Factory) Option {
	return func(c *Client) { c.factory = f }
}

func WithProber(p *Prober) Option {
	return func(c *Client) { c.prober = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client for dev. Rates are computed against the shared
// counter cache so successive clients for the same device keep continuity.
func NewClient(dev *models.Device, creds models.Credentials, rates *CounterCache, opts ...Option) *Client {
	c := &Client{
		device: dev,
		creds:  creds,
		rates:  rates,
		now:    time.Now,
		log:    logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.factory == nil {
		c.factory = NewFactory(defaultProtocolTimeout)
	}

	if c.prober == nil {
		c.prober = NewProber(defaultProbeTimeout)
	}

	return c
}

// Candidates lists the protocols discovery will try, in order.
func (c *Client) Candidates() []models.ConnectionMethod {
	methods := []models.ConnectionMethod{models.MethodNative}

	if c.device.REST.Enabled {
		methods = append(methods, models.MethodREST)
	}

	if c.device.SNMP.Enabled {
		methods = append(methods, models.MethodSNMP)
	}

	return methods
}

// Discover tries each candidate protocol in order and stops at the first
// one that answers an identity request.
func (c *Client) Discover(ctx context.Context) Discovery {
	var result Discovery

	for _, method := range c.Candidates() {
		if err := ctx.Err(); err != nil {
			result.Attempts = append(result.Attempts, Attempt{Method: method, Err: err})

			break
		}

		identity, err := c.identify(ctx, method)
		result.Attempts = append(result.Attempts, Attempt{Method: method, Identity: identity, Err: err})

		if err != nil {
			c.log.Debug().
				Int64("device_id", c.device.ID).
				Str("method", string(method)).
				Err(err).
				Msg("Discovery attempt failed")

			continue
		}

		result.Method = method
		result.Identity = identity

		break
	}

	return result
}

func (c *Client) identify(ctx context.Context, method models.ConnectionMethod) (string, error) {
	p, err := c.factory.Open(ctx, method, c.device, c.creds)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = p.Close()
	}()

	return p.Identity(ctx)
}

// FetchStats performs one stats round trip with method. Any protocol or
// parse failure is reported as ErrFetchFailed and nothing is applied.
func (c *Client) FetchStats(ctx context.Context, method models.ConnectionMethod) (*FetchResult, error) {
	if method == models.MethodUnset {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ErrNoMethod)
	}

	p, err := c.factory.Open(ctx, method, c.device, c.creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	defer func() {
		_ = p.Close()
	}()

	rows, err := p.ListInterfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	at := c.now()
	rows = FilterInterfaces(c.device.InterfacePolicy, rows)

	result := &FetchResult{
		Method:     method,
		At:         at,
		Interfaces: make([]InterfaceStats, 0, len(rows)),
	}

	for _, row := range rows {
		rx, tx := c.rates.Observe(CounterKey{DeviceID: c.device.ID, Interface: row.Name, Method: method},
			row.RxBytes, row.TxBytes, at)

		result.Interfaces = append(result.Interfaces, InterfaceStats{
			Info: row,
			Sample: models.TrafficSample{
				DeviceID:  c.device.ID,
				Interface: row.Name,
				Timestamp: at,
				RxBps:     rx,
				TxBps:     tx,
				TotalBps:  rx + tx,
			},
		})
	}

	if reporter, ok := p.(HostnameReporter); ok {
		result.DiscoveredHostname = reporter.DiscoveredHostname()
	}

	return result, nil
}

// CheckReachability probes the device's TCP ports and returns the first
// one that accepted a connection.
func (c *Client) CheckReachability(ctx context.Context) (int, error) {
	return c.prober.Probe(ctx, c.device.Address, CandidatePorts(c.device))
}
