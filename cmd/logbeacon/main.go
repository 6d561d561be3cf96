// Package main is the CLI entry point for logbeacon.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/logbeacon/internal/app"
	"github.com/five82/logbeacon/internal/instance"
	"github.com/five82/logbeacon/internal/logging"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logbeacon",
	Short: "Watch a log file for a marker and raise an alert",
	Long: `logbeacon tails a log file and raises an alert as soon as a marker
appears in bytes that have not been acknowledged yet. The alert stays
up until it is acknowledged; monitoring then continues from the current
end of the file.

Without a subcommand logbeacon runs the terminal UI.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runWatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the log (terminal UI, or --headless)",
	RunE:  runWatch,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan the unacknowledged part of the log once",
	Long: `Runs one full rescan of the bytes after the acknowledged offset and prints
whether an alert is pending. The exit code is 0 either way.`,
	RunE: runScan,
}

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge the current alert",
	Long: `Acknowledges everything scanned so far. A running instance is asked to
acknowledge; otherwise the persisted state is rescanned and acknowledged
directly.`,
	RunE: runAck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var (
	configPath string
	logLevel   string
	logPath    string
	interval   time.Duration
	headless   bool
	noHints    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/logbeacon/logbeacon.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default $"+logging.EnvLevel+" or info)")
	for _, c := range []*cobra.Command{rootCmd, watchCmd, scanCmd} {
		c.Flags().StringVar(&logPath, "path", "", "monitored log file (watch saves it, scan reads it once)")
	}
	for _, c := range []*cobra.Command{rootCmd, watchCmd} {
		c.Flags().DurationVar(&interval, "interval", 0, "scan interval, e.g. 1.5s (saved; minimum 500ms)")
		c.Flags().BoolVar(&headless, "headless", false, "run without the terminal UI and log to stderr")
		c.Flags().BoolVar(&noHints, "no-hints", false, "disable file-system notifications and rely on polling")
	}

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger(output string) *zap.Logger {
	logger, err := logging.New(logging.Options{Level: logLevel, Output: output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logbeacon: %v; logging disabled\n", err)
		return zap.NewNop()
	}
	return logger
}

func runWatch(cmd *cobra.Command, args []string) error {
	output := logging.DefaultFile()
	if headless {
		output = "stderr"
	}
	logger := newLogger(output)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := app.Run(ctx, app.Options{
		ConfigPath:   configPath,
		LogPath:      logPath,
		Interval:     interval,
		Headless:     headless,
		DisableHints: noHints,
		Logger:       logger,
	})
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return fmt.Errorf("%w; use 'logbeacon ack' to acknowledge from another terminal", err)
	}
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := newLogger("stderr")
	defer func() { _ = logger.Sync() }()

	snap, res, err := app.Scan(app.Options{ConfigPath: configPath, LogPath: logPath, Logger: logger})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", snap.Tooltip())
	fmt.Fprintf(out, "path:     %s\n", snap.Path)
	fmt.Fprintf(out, "outcome:  %s\n", res.Outcome)
	fmt.Fprintf(out, "size:     %d\n", res.Size)
	fmt.Fprintf(out, "acked at: %d\n", snap.AckOffset)
	fmt.Fprintf(out, "scanned:  %d bytes\n", res.Scanned)
	return nil
}

func runAck(cmd *cobra.Command, args []string) error {
	logger := newLogger("stderr")
	defer func() { _ = logger.Sync() }()

	res, err := app.Acknowledge(app.Options{ConfigPath: configPath, Logger: logger})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.RemotePID != 0 {
		fmt.Fprintf(out, "Asked running instance (pid %d) to acknowledge.\n", res.RemotePID)
		return nil
	}
	fmt.Fprintln(out, "Acknowledged. Monitoring continues from current log position.")
	fmt.Fprintf(out, "acked at: %d\n", res.Snapshot.AckOffset)
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "logbeacon %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
}
