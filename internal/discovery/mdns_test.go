// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager setup, TXT records and query result conversion
package discovery

import (
	"net"
	"strings"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Pad", Port: 8930})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
	mgr.Stop()
}

func TestAdvertiseRejectsInvalidPort(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Pad"})
	defer mgr.Stop()

	if err := mgr.Advertise(); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestTXTRecords(t *testing.T) {
	records := NewManager(Config{}).TXTRecords()

	joined := strings.Join(records, ";")
	if !strings.Contains(joined, "path=/ws") {
		t.Errorf("missing path record: %v", records)
	}
	if !strings.Contains(joined, "version=") {
		t.Errorf("missing version record: %v", records)
	}
}

func TestEntryToPad(t *testing.T) {
	tests := []struct {
		name     string
		entry    *mdns.ServiceEntry
		wantHost string
	}{
		{
			name: "ipv4 address",
			entry: &mdns.ServiceEntry{
				Name:   "studio._samplepad._tcp.local.",
				Host:   "studio.local.",
				AddrV4: net.ParseIP("192.168.1.20"),
				Port:   8930,
			},
			wantHost: "192.168.1.20",
		},
		{
			name: "host only",
			entry: &mdns.ServiceEntry{
				Name: "desk._samplepad._tcp.local.",
				Host: "desk.local.",
				Port: 9000,
			},
			wantHost: "desk.local.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := entryToPad(tt.entry)
			if pad.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", pad.Host, tt.wantHost)
			}
			if pad.Port != tt.entry.Port || pad.Name != tt.entry.Name {
				t.Errorf("unexpected pad %+v", pad)
			}
		})
	}
}

func TestGetLocalIPs(t *testing.T) {
	ips, err := getLocalIPs()
	if err != nil {
		t.Fatalf("getLocalIPs failed: %v", err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.To4() == nil {
			t.Errorf("unexpected address %v", ip)
		}
	}
}
