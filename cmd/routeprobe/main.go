// cmd/routeprobe/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
)

var errNoMethod = errors.New("no protocol answered")

type options struct {
	address   string
	username  string
	password  string
	policy    string
	rest      bool
	restPort  int
	restAlt   string
	snmp      bool
	community string
	version   string
	interval  time.Duration
	timeout   time.Duration
	debug     bool
}

// report is what routeprobe prints.
type report struct {
	Address   string                  `json:"address"`
	Reachable bool                    `json:"reachable"`
	OpenPort  int                     `json:"open_port,omitempty"`
	Method    models.ConnectionMethod `json:"method,omitempty"`
	Identity  string                  `json:"identity,omitempty"`
	Attempts  []attempt               `json:"attempts"`
	Hostname  string                  `json:"discovered_hostname,omitempty"`
	Traffic   []models.TrafficSample  `json:"traffic,omitempty"`
}

type attempt struct {
	Method models.ConnectionMethod `json:"method"`
	Error  string                  `json:"error,omitempty"`
}

func main() {
	var opts options

	flag.StringVar(&opts.address, "address", "", "Router address (required)")
	flag.StringVar(&opts.username, "user", "admin", "Login for the native and REST APIs")
	flag.StringVar(&opts.password, "password", "", "Password for the native and REST APIs")
	flag.StringVar(&opts.policy, "policy", string(models.PolicyStaticOnly), "Interface policy: none, static-only or all")
	flag.BoolVar(&opts.rest, "rest", false, "Try the REST API")
	flag.IntVar(&opts.restPort, "rest-port", models.DefaultRESTPort, "REST API port")
	flag.StringVar(&opts.restAlt, "rest-alt-hostname", "", "Alternate hostname for the REST API")
	flag.BoolVar(&opts.snmp, "snmp", false, "Try SNMP")
	flag.StringVar(&opts.community, "community", "public", "SNMP community")
	flag.StringVar(&opts.version, "snmp-version", "v2c", "SNMP version: v1 or v2c")
	flag.DurationVar(&opts.interval, "interval", 5*time.Second, "Delay between the two stats samples")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per protocol timeout")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.Parse()

	if opts.address == "" {
		flag.Usage()
		os.Exit(2)
	}

	l, err := logger.Init(logger.Config{Debug: opts.debug, Output: "stderr"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := probe(ctx, &opts, l)

	out, mErr := json.MarshalIndent(rep, "", "  ")
	if mErr != nil {
		log.Fatalf("Failed to encode report: %v", mErr)
	}

	fmt.Println(string(out))

	if err != nil {
		l.Error().Err(err).Msg("Probe failed")
		os.Exit(1)
	}
}

func probe(ctx context.Context, opts *options, l logger.Logger) (*report, error) {
	dev := &models.Device{
		Name:            opts.address,
		Address:         opts.address,
		InterfacePolicy: models.InterfacePolicy(opts.policy),
		REST:            models.RESTConfig{Enabled: opts.rest, Port: opts.restPort, AltHostname: opts.restAlt},
		SNMP:            models.SNMPConfig{Enabled: opts.snmp, Community: opts.community, Version: opts.version},
	}

	client := device.NewClient(dev,
		models.Credentials{Username: opts.username, Password: opts.password},
		device.NewCounterCache(),
		device.WithFactory(device.NewFactory(opts.timeout)),
		device.WithLogger(l),
	)

	rep := &report{Address: opts.address}

	if port, err := client.CheckReachability(ctx); err == nil {
		rep.Reachable = true
		rep.OpenPort = port
	}

	disc := client.Discover(ctx)
	for _, a := range disc.Attempts {
		entry := attempt{Method: a.Method}
		if a.Err != nil {
			entry.Error = a.Err.Error()
		}

		rep.Attempts = append(rep.Attempts, entry)
	}

	if !disc.OK() {
		return rep, errNoMethod
	}

	rep.Method = disc.Method
	rep.Identity = disc.Identity

	// The first fetch only primes the counters; rates come from the second.
	if _, err := client.FetchStats(ctx, disc.Method); err != nil {
		return rep, err
	}

	select {
	case <-ctx.Done():
		return rep, ctx.Err()
	case <-time.After(opts.interval):
	}

	res, err := client.FetchStats(ctx, disc.Method)
	if err != nil {
		return rep, err
	}

	rep.Hostname = res.DiscoveredHostname

	for _, st := range res.Interfaces {
		rep.Traffic = append(rep.Traffic, st.Sample)
	}

	return rep, nil
}
