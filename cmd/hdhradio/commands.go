package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/hdhradio/internal/bridge"
	"github.com/muurk/hdhradio/internal/config"
	"github.com/muurk/hdhradio/internal/discovery"
	"github.com/muurk/hdhradio/internal/hdhr"
	"github.com/muurk/hdhradio/internal/host"
	"github.com/muurk/hdhradio/internal/logging"
	"github.com/muurk/hdhradio/internal/stream"
)

// Command flags
var (
	configPath  string
	logLevel    string
	scanTimeout int
	deviceIP    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: OS config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(lineupCmd)
}

// serveCmd runs the bridge loop and control API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long: `Run the HDHomeRun radio bridge.

Discovers tuners, tracks their radio lineups, reconciles decode sessions
against the host's active routes, and serves the control API until
interrupted.`,
	Example: `  # Run with the default config file
  hdhradio serve

  # Run with an explicit config and verbose logging
  hdhradio serve --config ./hdhradio.yaml --log-level debug`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}
	defer logging.Sync()

	probe := hdhr.NewClient()
	supervisor := stream.NewSupervisor(cfg.Decoder.FFmpegPath)
	hostClient := host.NewClient(cfg.Host.BaseURL)
	sink := host.NewSink(cfg.Host.IngestURL)
	defer sink.Close()

	b := bridge.New(bridge.Config{
		MDNSTimeout:       time.Duration(cfg.Discovery.MDNSTimeoutSeconds) * time.Second,
		DiscoveryInterval: time.Duration(cfg.Discovery.IntervalSeconds) * time.Second,
		RefreshInterval:   time.Duration(cfg.Discovery.RefreshSeconds) * time.Second,
	}, probe, supervisor, sink, hostClient, hostClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := bridge.NewAPIServer(cfg.ListenAddr, b)
	go func() {
		if err := api.Serve(ctx); err != nil {
			logging.Error("Control API failed", zap.Error(err))
		}
	}()

	b.Run(ctx)
	return nil
}

// scanCmd discovers tuners on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for HDHomeRun tuners on the network",
	Long: `Scan for HDHomeRun tuners using all discovery methods.

Runs mDNS and UDP broadcast discovery, falling back to a full subnet
sweep when neither finds anything, and prints every verified device.`,
	Example: `  # Scan with the default 10-second mDNS window
  hdhradio scan

  # Quick 3-second scan
  hdhradio scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "mDNS scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	fmt.Printf("Scanning for HDHomeRun tuners (mDNS timeout: %ds)...\n\n", scanTimeout)

	orchestrator := discovery.NewOrchestrator(hdhr.NewClient(),
		time.Duration(scanTimeout)*time.Second)
	devices := orchestrator.DiscoverAll(cmd.Context())

	if len(devices) == 0 {
		fmt.Println("No tuners found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the tuner is powered on and on the same subnet")
		fmt.Println("  - Check that UDP ports 5353 (mDNS) and 65001 are not filtered")
		fmt.Println("  - Try 'hdhradio lineup --device <ip>' if you know the address")
		return nil
	}

	fmt.Printf("Found %d tuner(s):\n\n", len(devices))

	ips := make([]string, 0, len(devices))
	for ip := range devices {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	for i, ip := range ips {
		fmt.Printf("%d. %s\n", i+1, devices[ip])
		fmt.Printf("   IP: %s\n\n", ip)
	}

	fmt.Println("Use 'hdhradio lineup --device <ip>' to list a tuner's radio stations")
	return nil
}

// lineupCmd lists the radio stations a tuner publishes
var lineupCmd = &cobra.Command{
	Use:   "lineup",
	Short: "List radio stations in a tuner's lineup",
	Long: `Fetch a tuner's channel lineup and list the entries classified as
radio stations, with the tag each one is registered under.`,
	Example: `  # List radio stations on a specific tuner
  hdhradio lineup --device 192.168.1.100`,
	RunE: runLineup,
}

func init() {
	lineupCmd.Flags().StringVar(&deviceIP, "device", "", "Tuner IP address (required)")
	_ = lineupCmd.MarkFlagRequired("device")
}

func runLineup(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	probe := hdhr.NewClient()
	device, ok := probe.Describe(deviceIP)
	if !ok {
		return fmt.Errorf("no HDHomeRun device answered at %s", deviceIP)
	}

	fmt.Printf("%s\n\n", device)

	channels := probe.FetchLineup(device)
	if len(channels) == 0 {
		fmt.Println("No channels with stream URLs in the lineup.")
		return nil
	}

	radio := 0
	for _, ch := range channels {
		if !hdhr.IsLikelyRadio(ch.GuideNumber, ch.GuideName) {
			continue
		}
		radio++
		fmt.Printf("%-8s %s\n", ch.GuideNumber, ch.GuideName)
		fmt.Printf("         tag: %s\n", ch.Tag())
		fmt.Printf("         url: %s\n\n", ch.URL)
	}

	fmt.Printf("%d radio station(s) out of %d channel(s)\n", radio, len(channels))
	return nil
}
