package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/fleetctl"
	"VCS_FMS_Microservice/internal/watchdog"
	"VCS_FMS_Microservice/pkg/logger"
	"VCS_FMS_Microservice/pkg/remote"
)

var (
	envFile      string
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Diagnose, repair and monitor remote gateway instances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "./.env", "path to the environment file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", fleetctl.FormatTable, "output format (table, json)")

	rootCmd.AddCommand(newDiagnoseCmd())
	rootCmd.AddCommand(newFixCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newWatchdogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildApp() (*fleetctl.App, error) {
	cfg, err := fleetctl.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config error: %w", err)
	}
	zapLogger := logger.NewCLILogger(cfg.Server.LogLevel).With(zap.String("service.name", "fleetctl"))
	return fleetctl.NewApp(cfg, zapLogger)
}

func resolveHost(app *fleetctl.App, name string) (remote.Host, string, error) {
	instance, ok := app.Fleet.Resolve(name)
	if !ok {
		return remote.Host{}, "", fmt.Errorf("unknown instance %q", name)
	}
	channelID := instance.ChannelID
	if channelID == "" {
		channelID = app.Cfg.Notify.DefaultChannel
	}
	return instance.ResolveHost(), channelID, nil
}

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <instance|self>",
		Short: "Run the full check set against one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			host, _, err := resolveHost(app, args[0])
			if err != nil {
				return err
			}
			return fleetctl.RunDiagnose(cmd.Context(), app.Collector, app.Publisher,
				host, outputFormat, cmd.OutOrStdout(), app.Logger)
		},
	}
}

func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix <instance|self>",
		Short: "Diagnose one instance and remediate every failing check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			host, channelID, err := resolveHost(app, args[0])
			if err != nil {
				return err
			}
			orchestrator, err := app.Orchestrator()
			if err != nil {
				return err
			}
			return fleetctl.RunFix(cmd.Context(), app.Collector, orchestrator, app.Publisher,
				host, channelID, outputFormat, cmd.OutOrStdout(), app.Logger)
		},
	}
}

func newSweepCmd() *cobra.Command {
	var excelPath string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Probe the whole fleet and report per instance status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			return fleetctl.RunSweep(cmd.Context(), app.Sweeper(), app.Fleet.HostList(),
				app.Cfg.Sweep.Concurrency, app.Cfg.Sweep.PerHostTimeout,
				outputFormat, excelPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&excelPath, "excel", "", "additionally write the report as a spreadsheet to this path")
	return cmd
}

func newWatchdogCmd() *cobra.Command {
	watchdogCmd := &cobra.Command{
		Use:   "watchdog",
		Short: "Liveness watchdog for a single instance",
	}
	watchdogCmd.AddCommand(&cobra.Command{
		Use:   "tick",
		Short: "Run one watchdog pass and print the resulting state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			wd, err := app.Watchdog()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			return fleetctl.RunWatchdogTick(ctx, wd, cmd.OutOrStdout())
		},
	})
	watchdogCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the watchdog on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			wd, err := app.Watchdog()
			if err != nil {
				return err
			}
			runner, err := watchdog.NewRunner(wd, app.Cfg.Watchdog.Interval, app.Logger)
			if err != nil {
				return err
			}
			runner.Start()
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			app.Logger.Info("shutting down watchdog...")
			runner.Stop()
			return nil
		},
	})
	return watchdogCmd
}
