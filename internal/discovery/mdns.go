// ABOUTME: mDNS service discovery for samplepad trigger endpoints
// ABOUTME: Advertises the local endpoint and finds other pads on the network
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/Resonate-Protocol/sampleplayer/internal/version"
)

// ServiceType is the DNS-SD type of the trigger endpoint
const ServiceType = "_samplepad._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
}

// PadInfo describes a discovered trigger endpoint
type PadInfo struct {
	Name string
	Host string
	Port int
	Info []string
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// TXTRecords returns the metadata published with the service
func (m *Manager) TXTRecords() []string {
	return []string{
		"path=/ws",
		"version=" + version.Version,
	}
}

// Advertise publishes the trigger endpoint until Stop
func (m *Manager) Advertise() error {
	if m.config.Port <= 0 {
		return fmt.Errorf("invalid port %d", m.config.Port)
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.TXTRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Stop withdraws the advertisement
func (m *Manager) Stop() {
	m.cancel()
}

// Lookup queries the network once for trigger endpoints
func Lookup(timeout time.Duration) ([]*PadInfo, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []*PadInfo)

	go func() {
		var pads []*PadInfo
		for entry := range entries {
			pads = append(pads, entryToPad(entry))
		}
		done <- pads
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true

	err := mdns.Query(params)
	close(entries)
	pads := <-done

	if err != nil {
		return pads, fmt.Errorf("mdns query failed: %w", err)
	}
	return pads, nil
}

// entryToPad converts a query result
func entryToPad(entry *mdns.ServiceEntry) *PadInfo {
	host := entry.Host
	if entry.AddrV4 != nil {
		host = entry.AddrV4.String()
	}
	return &PadInfo{
		Name: entry.Name,
		Host: host,
		Port: entry.Port,
		Info: entry.InfoFields,
	}
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
