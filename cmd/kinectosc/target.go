package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/kinectosc/internal/forward"
	"github.com/ayusman/kinectosc/internal/store"
)

var clearTarget bool

var targetCmd = &cobra.Command{
	Use:   "target [a.b.c.d:port | a.b.c.d port]",
	Short: "Show or save the network target used on the next run",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		settings := db.Settings()

		if clearTarget {
			if err := settings.Delete(store.SettingTarget); err != nil {
				return fmt.Errorf("failed to clear target: %w", err)
			}
			fmt.Println("Target cleared")
			return nil
		}

		if len(args) == 0 {
			v, err := settings.Get(store.SettingTarget)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Println("No target set")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read target: %w", err)
			}
			fmt.Println(v)
			return nil
		}

		t, err := parseTargetArgs(args)
		if err != nil {
			return err
		}
		if err := settings.Set(store.SettingTarget, t.String()); err != nil {
			return fmt.Errorf("failed to save target: %w", err)
		}
		fmt.Printf("Target set to %s\n", t)
		return nil
	},
}

// parseTargetArgs accepts either "a.b.c.d:port" or "a.b.c.d" "port".
func parseTargetArgs(args []string) (forward.Target, error) {
	if len(args) == 1 {
		return forward.ParseTargetString(args[0])
	}

	parts := strings.Split(args[0], ".")
	if len(parts) != 4 {
		return forward.Target{}, fmt.Errorf("%w: %q needs four octets", forward.ErrInvalidTarget, args[0])
	}
	return forward.ParseTarget([4]string(parts), args[1])
}

func init() {
	targetCmd.Flags().BoolVar(&clearTarget, "clear", false, "forget the saved target")
	rootCmd.AddCommand(targetCmd)
}
