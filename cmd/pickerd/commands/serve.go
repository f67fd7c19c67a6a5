package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lumocast/pickerd/internal/api"
	"github.com/lumocast/pickerd/internal/capture"
	"github.com/lumocast/pickerd/internal/config"
	"github.com/lumocast/pickerd/internal/ipc"
	"github.com/lumocast/pickerd/internal/logger"
	"github.com/lumocast/pickerd/internal/portal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal backend daemon",
	Long: `Run the ScreenCast portal backend on the session bus.

The daemon registers ` + portal.ServiceName + ` and answers
CreateSession/SelectSources/Start from xdg-desktop-portal by querying the
Lumocast app over its local socket. Normally started as a systemd user
service alongside the app.`,
	Example: `  # Run with defaults
  pickerd serve

  # Run with debug logging and the status API on port 8311
  pickerd serve --log-level debug --api-port 8311`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to initialize config manager: %w", err)
	}

	// Flag overrides are runtime-only; they are not written back.
	cfg := configMgr.Get()
	if viper.IsSet("log_level") && viper.GetString("log_level") != "" {
		cfg.LogLevel = viper.GetString("log_level")
	}
	if viper.IsSet("api_port") && viper.GetInt("api_port") > 0 {
		cfg.APIPort = viper.GetInt("api_port")
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.WithComponent("serve")

	client := ipc.NewClient(cfg.SocketPath, time.Duration(cfg.QueryTimeoutMs)*time.Millisecond)
	log.Info().
		Str("config", configMgr.GetConfigPath()).
		Str("socket", client.SocketPath()).
		Msg("Starting pickerd")

	// Best-effort startup diagnostics; a missing display server must not
	// keep the portal backend from running.
	if monitors := capture.ListMonitors(); len(monitors) > 0 {
		log.Info().Int("monitors", len(monitors)).Msg("Enumerated local monitors")
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	registry := portal.NewRegistry()
	backend := portal.NewBackend(registry, client)
	if err := portal.Register(conn, backend); err != nil {
		return fmt.Errorf("failed to register portal backend: %w", err)
	}

	if cfg.APIPort > 0 {
		server := api.NewServer(registry, client)
		go func() {
			if err := server.Start(cfg.APIPort); err != nil {
				log.Error().Err(err).Msg("Status API server stopped")
			}
		}()
	}

	log.Info().Msg("Portal backend ready, waiting for requests")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down")
	return nil
}
