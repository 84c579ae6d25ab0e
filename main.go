// ABOUTME: Entry point for the samplepad sample player
// ABOUTME: Loads configuration, preloads samples and runs the TUI or headless remote trigger
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Resonate-Protocol/sampleplayer/internal/config"
	"github.com/Resonate-Protocol/sampleplayer/internal/discovery"
	"github.com/Resonate-Protocol/sampleplayer/internal/remote"
	"github.com/Resonate-Protocol/sampleplayer/internal/ui"
	"github.com/Resonate-Protocol/sampleplayer/internal/version"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/decode"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
	"github.com/Resonate-Protocol/sampleplayer/pkg/sampler"
)

var (
	configPath  = flag.String("config", "", "Config file (default: ./samplepad.yaml if present)")
	sampleDir   = flag.String("dir", "", "Directory containing sample files")
	samples     = flag.String("samples", "", "Comma-separated sample names (default: every file in -dir)")
	backend     = flag.String("backend", "", "Audio backend: oto, malgo or portaudio")
	maxVoices   = flag.Int("max-voices", 0, "Maximum concurrent voices")
	exhaustion  = flag.String("exhaustion", "", "When all voices are busy: steal-oldest or fail")
	logFile     = flag.String("log-file", "", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	remoteOn    = flag.Bool("remote", false, "Enable the websocket trigger endpoint")
	remoteAddr  = flag.String("addr", "", "Listen address for the trigger endpoint")
	noMDNS      = flag.Bool("no-mdns", false, "Do not advertise the trigger endpoint")
	discover    = flag.Bool("discover", false, "List samplepads on the network and exit")
	writeConfig = flag.String("write-config", "", "Write the effective config to this file and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *discover {
		listPads()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *writeConfig != "" {
		if err := config.Write(*writeConfig, cfg); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Wrote %s\n", *writeConfig)
		return
	}

	useTUI := !cfg.Headless

	// Set up logging
	logger := newLogWriter(cfg.Log)
	defer func() { _ = logger.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(logger)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, logger))
	}

	log.Printf("Starting %s (backend: %s, %d voices, %s)",
		version.String(), cfg.Backend, cfg.MaxVoices, cfg.Exhaustion)

	policy, _ := cfg.ExhaustionPolicy()
	player, err := sampler.NewPlayer(sampler.Config{
		Driver:     newDriver(cfg.Backend),
		SampleDir:  cfg.SampleDir,
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		MaxVoices:  cfg.MaxVoices,
		Exhaustion: policy,
		OnError: func(err error) {
			log.Printf("Player error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}
	defer player.Shutdown()

	names, err := sampleNames(cfg)
	if err != nil {
		log.Fatalf("Failed to list samples: %v", err)
	}
	loaded := preloadAll(player, names)
	if len(loaded) == 0 {
		log.Printf("Warning: no samples loaded from %s", cfg.SampleDir)
	}

	// Remote trigger endpoint
	var srv *remote.Server
	var disc *discovery.Manager
	if cfg.Remote.Enabled {
		srv = remote.New(remote.Config{Addr: cfg.Remote.Addr, Name: cfg.Remote.Name}, player)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("Remote trigger stopped: %v", err)
			}
		}()
		defer srv.Stop()

		if cfg.Remote.Discovery {
			disc = startDiscovery(cfg.Remote)
			if disc != nil {
				defer disc.Stop()
			}
		}
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if useTUI {
		prog, err := ui.Run(player, loaded)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}

		quit := make(chan struct{})
		go func() {
			if _, err := prog.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			close(quit)
		}()

		select {
		case <-quit:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
			prog.Quit()
			<-quit
		}
	} else {
		log.Printf("Running headless with %d samples: %s", len(loaded), strings.Join(loaded, ", "))
		<-sigChan
		log.Printf("Shutdown signal received")
	}

	stats := player.Stats()
	log.Printf("Plays: %d, steals: %d, rejected: %d", stats.Plays, stats.Steals, stats.Rejected)
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.SampleDir = *sampleDir
		case "samples":
			cfg.Samples = splitList(*samples)
		case "backend":
			cfg.Backend = *backend
		case "max-voices":
			cfg.MaxVoices = *maxVoices
		case "exhaustion":
			cfg.Exhaustion = *exhaustion
		case "log-file":
			cfg.Log.File = *logFile
		case "no-tui":
			cfg.Headless = *noTUI
		case "remote":
			cfg.Remote.Enabled = *remoteOn
		case "addr":
			cfg.Remote.Addr = *remoteAddr
		case "no-mdns":
			cfg.Remote.Discovery = !*noMDNS
		}
	})
}

// splitList splits a comma-separated flag value, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newLogWriter returns a size-rotated log file
func newLogWriter(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// newDriver creates the audio driver for a backend name
func newDriver(name string) output.Driver {
	switch name {
	case "malgo":
		return output.NewMalgo()
	case "portaudio":
		return output.NewPortAudio()
	default:
		return output.NewOto()
	}
}

// sampleNames returns the configured samples, or every sample file in the directory
func sampleNames(cfg config.Config) ([]string, error) {
	if len(cfg.Samples) > 0 {
		return cfg.Samples, nil
	}
	return decode.NewDirLoader(cfg.SampleDir).Names()
}

// preloadAll preloads every name and returns the ones that loaded
func preloadAll(player *sampler.Player, names []string) []string {
	var loaded []string
	for _, name := range names {
		if err := player.Preload(name); err != nil {
			log.Printf("Skipping sample %q: %v", name, err)
			continue
		}
		loaded = append(loaded, name)
	}
	return loaded
}

// startDiscovery advertises the trigger endpoint via mDNS
func startDiscovery(cfg config.RemoteConfig) *discovery.Manager {
	port, err := listenPort(cfg.Addr)
	if err != nil {
		log.Printf("Warning: not advertising: %v", err)
		return nil
	}

	disc := discovery.NewManager(discovery.Config{
		ServiceName: cfg.Name,
		Port:        port,
	})
	if err := disc.Advertise(); err != nil {
		log.Printf("Warning: mDNS advertisement failed: %v", err)
		return nil
	}
	return disc
}

// listenPort extracts the port from a listen address
func listenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return port, nil
}

// listPads prints samplepads found on the local network
func listPads() {
	pads, err := discovery.Lookup(3 * time.Second)
	if err != nil {
		log.Printf("Discovery error: %v", err)
	}
	if len(pads) == 0 {
		fmt.Println("No samplepads found")
		return
	}
	for _, p := range pads {
		fmt.Printf("%s\t%s:%d\t%s\n", p.Name, p.Host, p.Port, strings.Join(p.Info, " "))
	}
}
