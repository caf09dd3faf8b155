// Command hapticserver runs the device-discovery and command-routing
// core described in this module: it scans BLE/serial/websocket
// transports for configured devices, identifies and initializes them
// against a protocol registry, and dispatches versioned protocol
// messages to the resulting handlers. The client-facing connector that
// would carry those messages over a network socket is an external
// collaborator and is intentionally not built here (spec.md §1).
//
// Adapted from the teacher's cmd/comx/main.go: same cobra root command,
// persistent --config/--verbose flags, and signal-driven start/stop
// shape, rewired from ComX-Bridge's gateway engine onto this module's
// device manager and event loop.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/commatea/hapticbridge/pkg/config"
	"github.com/commatea/hapticbridge/pkg/deviceconfig"
	"github.com/commatea/hapticbridge/pkg/logger"
	"github.com/commatea/hapticbridge/pkg/protocol"
	"github.com/commatea/hapticbridge/pkg/protocol/kiiroo"
	"github.com/commatea/hapticbridge/pkg/protocol/lovense"
	"github.com/commatea/hapticbridge/pkg/protocol/rawproto"
	"github.com/commatea/hapticbridge/pkg/protocol/vorze"
	"github.com/commatea/hapticbridge/pkg/server"
	"github.com/commatea/hapticbridge/pkg/transport/ble"
	"github.com/commatea/hapticbridge/pkg/transport/serial"
	"github.com/commatea/hapticbridge/pkg/transport/wsdevice"
)

// shutdownTimeout bounds how long StopAllDevices gets to fan out before
// the process exits regardless.
const shutdownTimeout = 5 * time.Second

var (
	version   = "0.1.0"
	buildTime = "dev"
	gitCommit = "unknown"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "hapticserver",
		Short:   "hapticbridge device core",
		Long:    "hapticserver discovers, identifies, and routes commands to haptic hardware over BLE, serial, and websocket transports.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./hapticbridge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")

	rootCmd.AddCommand(newServeCmd(), newDevicesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start discovery and command routing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List protocols registered for discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			registry := defaultProtocolRegistry()
			for _, dev := range cfg.Devices {
				if _, ok := registry.Lookup(dev.Protocol); !ok {
					fmt.Printf("%s (no registered factory)\n", dev.Protocol)
					continue
				}
				fmt.Println(dev.Protocol)
			}
			return nil
		},
	}
}

func defaultProtocolRegistry() *protocol.Registry {
	registry := protocol.NewRegistry()
	registry.Register(lovense.NewFactory())
	registry.Register(kiiroo.NewFactory())
	registry.Register(vorze.NewFactory())
	registry.Register(rawproto.NewFactory())
	return registry
}

func runServe() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	log := logger.New(cfg.Logging)

	registry := defaultProtocolRegistry()
	devConfig, err := cfg.BuildDeviceManager(registry)
	if err != nil {
		return fmt.Errorf("build device manager: %w", err)
	}

	manager := server.NewManager()
	commManagers := buildCommManagers(devConfig, cfg)
	loop := server.NewEventLoop(manager, devConfig, registry, commManagers, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
	}

	manager.StartScanning()
	log.Info("hapticbridge core started", "protocols", registry.Names())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	manager.StopScanning()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if _, err := manager.StopAllDevices(stopCtx); err != nil {
		log.Warn("stop all devices during shutdown failed", "error", err)
	}
	return nil
}

// buildCommManagers wires one CommManager per transport named by any
// configured device's specifiers, matched against the built
// deviceconfig.Manager so discovery only reports hits the manager would
// actually accept.
func buildCommManagers(devConfig *deviceconfig.Manager, cfg *config.Config) []server.CommManager {
	var commManagers []server.CommManager

	hasBLE, hasSerial, hasWS := false, false, false
	for _, dev := range cfg.Devices {
		hasBLE = hasBLE || dev.BLE != nil
		hasSerial = hasSerial || dev.Serial != nil
		hasWS = hasWS || dev.Websocket != nil
	}

	if hasBLE {
		commManagers = append(commManagers, ble.NewCommManager(
			func(name string, uuids []string) bool {
				_, _, ok := devConfig.MatchBLE(name, uuids)
				return ok
			},
			ble.Factory{},
		))
	}
	if hasSerial {
		commManagers = append(commManagers, serial.NewCommManager(
			func(port string) bool {
				_, _, ok := devConfig.MatchSerial(port)
				return ok
			},
			serial.DefaultPortConfig(),
		))
	}
	if hasWS {
		commManagers = append(commManagers, wsdevice.NewCommManager(cfg.Websocket,
			func(name string) bool {
				_, _, ok := devConfig.MatchWebsocket(name)
				return ok
			},
		))
	}
	return commManagers
}
