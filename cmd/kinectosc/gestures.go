package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/kinectosc/internal/dispatch"
	"github.com/ayusman/kinectosc/internal/gesture"
	"github.com/ayusman/kinectosc/internal/sensor"
)

var gesturesCmd = &cobra.Command{
	Use:   "gestures [database]",
	Short: "List the gestures in a database and the OSC address each is sent to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		path := cfg.Sensor.Gestures
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no gesture database given; pass a path or --gestures")
		}

		gdb, err := gesture.Load(sensor.NewReplayDevice(cfg.ReplayConfig()), path)
		if err != nil {
			return err
		}

		mode := cfg.Dispatcher().Mode
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tADDRESS")
		for _, def := range gdb.Definitions() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, def.Kind, dispatch.Address(mode, def))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(gesturesCmd)
}
