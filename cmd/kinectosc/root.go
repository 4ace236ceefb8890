package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/kinectosc/internal/config"
	"github.com/ayusman/kinectosc/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

// flags holds the command line overrides shared by every subcommand.
type flags struct {
	ConfigPath  string
	Recording   string
	Gestures    string
	Target      string
	HTTPAddr    string
	DataDir     string
	NoTray      bool
	AddressMode string
}

var (
	opts flags
	// cfg is the effective configuration after flags are applied
	cfg *config.Config
	// db is the store shared by subcommands
	db *store.Store
)

var rootCmd = &cobra.Command{
	Use:     "kinectosc",
	Short:   "Forward Kinect gestures of the nearest person as OSC messages",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		db, err = store.New(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runForwarder(cmd.Context())
	},
}

// loadConfig reads the config file, if any, and applies flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	fl := cmd.Flags()
	if fl.Changed("recording") {
		c.Sensor.Recording = opts.Recording
	}
	if fl.Changed("gestures") {
		c.Sensor.Gestures = opts.Gestures
	}
	if fl.Changed("target") {
		c.Target = opts.Target
	}
	if fl.Changed("http") {
		c.HTTPAddr = opts.HTTPAddr
	}
	if fl.Changed("data-dir") {
		c.DataDir = opts.DataDir
	}
	if fl.Changed("no-tray") {
		c.Tray = !opts.NoTray
	}
	if fl.Changed("address-mode") {
		c.Dispatch.AddressMode = opts.AddressMode
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&opts.Recording, "recording", "", "sensor recording to replay (JSON lines)")
	pf.StringVarP(&opts.Gestures, "gestures", "g", "", "gesture database file")
	pf.StringVarP(&opts.Target, "target", "t", "", `network target "a.b.c.d:port" (default: last saved target)`)
	pf.StringVar(&opts.HTTPAddr, "http", config.DefaultHTTPAddr, "control API listen address")
	pf.StringVar(&opts.DataDir, "data-dir", config.DefaultDataDir(), "directory for the settings and event database")
	pf.BoolVar(&opts.NoTray, "no-tray", false, "run without the system tray")
	pf.StringVar(&opts.AddressMode, "address-mode", "split", `OSC addressing: "split" (/dGesture, /cGesture) or "named" (/<gesture>)`)
}
