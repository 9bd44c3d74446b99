// Package discovery advertises and finds simulator command endpoints over
// mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"github.com/hashicorp/mdns"
)

const (
	ServiceName = "_diffdrive._udp"
	Version     = "0.1.0"
)

// Endpoint is a discovered simulator.
type Endpoint struct {
	Instance string
	Addr     *net.UDPAddr
	Scenario string
	Version  string
}

// String returns host:port.
func (e Endpoint) String() string {
	return e.Addr.String()
}

// Announcer advertises one simulator instance.
type Announcer struct {
	instance string
	port     int
	scenario string
	logger   golog.Logger
	server   *mdns.Server
}

// NewAnnouncer creates an announcer for the UDP command port.
func NewAnnouncer(instance string, port int, scenario string, logger golog.Logger) *Announcer {
	return &Announcer{instance: instance, port: port, scenario: scenario, logger: logger}
}

// Start begins answering mDNS queries.
func (a *Announcer) Start() error {
	service, err := mdns.NewMDNSService(
		a.instance,
		ServiceName,
		"",
		"",
		a.port,
		localIPv4(),
		a.txt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to start mDNS server: %w", err)
	}
	a.server = server
	a.logger.Infow("mDNS announcing", "instance", a.instance, "service", ServiceName, "port", a.port)
	return nil
}

func (a *Announcer) txt() []string {
	return []string{
		"version=" + Version,
		"scenario=" + a.scenario,
	}
}

// Stop withdraws the announcement.
func (a *Announcer) Stop() {
	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			a.logger.Warnw("mDNS shutdown", "error", err)
		}
		a.server = nil
	}
}

// Browse queries the network once and returns every endpoint that answered
// before ctx expires or timeout elapses.
func Browse(ctx context.Context, timeout time.Duration, logger golog.Logger) ([]Endpoint, error) {
	entriesCh := make(chan *mdns.ServiceEntry, 16)
	found := map[string]Endpoint{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entriesCh {
			ep, ok := parseEntry(entry)
			if !ok {
				continue
			}
			if _, seen := found[ep.Instance]; !seen {
				logger.Debugw("mDNS discovered", "instance", ep.Instance, "addr", ep.String())
			}
			found[ep.Instance] = ep
		}
	}()

	if d, ok := ctx.Deadline(); ok && time.Until(d) < timeout {
		timeout = time.Until(d)
	}
	params := mdns.DefaultParams(ServiceName)
	params.Entries = entriesCh
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entriesCh)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mDNS query failed: %w", err)
	}

	out := make([]Endpoint, 0, len(found))
	for _, ep := range found {
		out = append(out, ep)
	}
	return out, nil
}

// parseEntry converts a service entry, ignoring other services and entries
// without an IPv4 address.
func parseEntry(entry *mdns.ServiceEntry) (Endpoint, bool) {
	if entry == nil || entry.AddrV4 == nil || !strings.Contains(entry.Name, ServiceName) {
		return Endpoint{}, false
	}
	ep := Endpoint{
		Instance: instanceName(entry.Name),
		Addr:     &net.UDPAddr{IP: entry.AddrV4, Port: entry.Port},
		Version:  "unknown",
	}
	for _, txt := range entry.InfoFields {
		key, val, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "version":
			ep.Version = val
		case "scenario":
			ep.Scenario = val
		}
	}
	return ep, true
}

// instanceName strips the service and domain suffix from a full entry name.
func instanceName(full string) string {
	if i := strings.Index(full, "."+ServiceName); i > 0 {
		return full[:i]
	}
	return full
}

func localIPv4() []net.IP {
	var ips []net.IP
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	if len(ips) == 0 {
		ips = []net.IP{net.IPv4(127, 0, 0, 1)}
	}
	return ips
}
