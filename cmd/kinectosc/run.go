package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/kinectosc/internal/app"
	"github.com/ayusman/kinectosc/internal/forward"
	"github.com/ayusman/kinectosc/internal/sensor"
	"github.com/ayusman/kinectosc/internal/server"
	"github.com/ayusman/kinectosc/internal/tracker"
	"github.com/ayusman/kinectosc/internal/tray"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the sensor and forward gestures (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runForwarder(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runForwarder opens the sensor and serves the control surfaces until ctx is
// cancelled or the tray is quit. A missing sensor ends the process.
func runForwarder(ctx context.Context) error {
	fmt.Printf("KinectOSC %s - Kinect gestures to OSC\n", Version)
	fmt.Printf("Database: %s\n", db.Path())

	device := sensor.NewReplayDevice(cfg.ReplayConfig())
	application := app.New(app.Config{
		Store:    db,
		Device:   device,
		Gestures: cfg.Sensor.Gestures,
		Target:   cfg.Target,
		Dispatch: cfg.Dispatcher(),
		Tracker:  cfg.TrackerOptions(),
	})

	if err := application.Start(); err != nil {
		if errors.Is(err, sensor.ErrNoDevice) {
			fmt.Fprintln(os.Stderr, "No Kinect sensor found. Connect a sensor or pass --recording with a session file.")
		}
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     db,
		App:       application,
	})
	httpServer := srv.HTTPServer(cfg.HTTPAddr)

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			cancel()
		}
	}()

	if cfg.Tray {
		runTray(ctx, cancel, application)
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	return nil
}

// runTray shows the system tray on the calling goroutine until ctx ends or
// the user quits from the menu.
func runTray(ctx context.Context, cancel context.CancelFunc, application *app.App) {
	t := tray.New()
	t.SetEnabled(application.IsEnabled())
	if target, ok := application.Target(); ok {
		t.SetTarget(target.String())
	}

	t.OnToggle(application.SetEnabled)
	t.OnSettings(func() {
		fmt.Printf("Control API: http://%s/api/status\n", cfg.HTTPAddr)
	})
	t.OnQuit(cancel)

	application.OnGesture(func(e app.GestureEvent) {
		if n := len(e.Messages); n > 0 && e.Target != "" {
			t.RecordGesture(e.Messages[n-1].Gesture, n)
		}
		t.SetTarget(e.Target)
	})

	application.OnTarget(func(target forward.Target) {
		t.SetTarget(target.String())
	})

	selector := cfg.Selector()
	application.OnBodies(func(snap tracker.Snapshot) {
		selected, ok := snap.Closest(selector)
		if !ok {
			selected = -1
		}
		t.SetBodies(snap.TrackedCount(), selected)
	})

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web" and dataDir/web, returning the first directory
// found or an empty string.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
