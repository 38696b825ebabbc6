package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wrale/wrale-proof/internal/wproofctl/util"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
	settingsfile "github.com/wrale/wrale-proof/internal/wproofd/settings/file"
)

// simulation is what a simulated page rotates through
type simulation struct {
	Group    string
	Items    []overlay.ContentItem
	Rotation overlay.RotationConfig
}

type simulateOptions struct {
	runFor       time.Duration
	speed        float64
	ticks        bool
	tickInterval time.Duration
}

func newSimulateCmd(o *options) *cobra.Command {
	var (
		opts         simulateOptions
		settingsPath string
		group        string
	)

	cmd := &cobra.Command{
		Use:   "simulate [PAGE]",
		Short: "Preview a page's overlay rotation in the terminal",
		Long: `Run the overlay rotation locally and print every transition as it
happens. Items come from the server for PAGE, or from a settings file and
group when --settings-file is given. Use --speed to compress time.`,
		Example: `  # Watch the pricing page rotate for a minute
  wproofctl simulate pricing --for=1m

  # Preview group 2 of a local settings file ten times faster
  wproofctl simulate --settings-file=wproof-settings.yaml --group=2 --speed=10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sim simulation
				err error
			)
			switch {
			case settingsPath != "":
				sim, err = simulationFromFile(cmd.Context(), settingsPath, group)
			case len(args) == 1:
				sim, err = o.simulationFromServer(cmd, args[0])
			default:
				return fmt.Errorf("a page or --settings-file is required")
			}
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runSimulation(ctx, cmd.OutOrStdout(), sim, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.runFor, "for", 30*time.Second, "How long to run, in simulated time")
	cmd.Flags().Float64Var(&opts.speed, "speed", 1, "Time compression factor")
	cmd.Flags().BoolVar(&opts.ticks, "ticks", false, "Also print countdown progress")
	cmd.Flags().DurationVar(&opts.tickInterval, "tick-interval", 500*time.Millisecond, "Progress interval, in simulated time")
	cmd.Flags().StringVar(&settingsPath, "settings-file", "", "Read items from a settings YAML file instead of the server")
	cmd.Flags().StringVar(&group, "group", "", "Audience group to simulate with --settings-file")

	return cmd
}

func (o *options) simulationFromServer(cmd *cobra.Command, page string) (simulation, error) {
	c, err := o.getClient()
	if err != nil {
		return simulation{}, err
	}

	eligible, err := c.GetOverlays(cmd.Context(), page)
	if err != nil {
		return simulation{}, fmt.Errorf("error getting overlays: %w", err)
	}

	sim := simulation{
		Group:    eligible.Group,
		Rotation: overlay.RotationFromAPI(eligible.Rotation),
	}
	for _, ci := range eligible.Items {
		sim.Items = append(sim.Items, overlay.ItemFromAPI(ci.Item))
	}
	return sim, nil
}

func simulationFromFile(ctx context.Context, path, group string) (simulation, error) {
	svc := settings.NewService(settingsfile.NewRepository(path), zerolog.Nop())
	sel, err := svc.Eligible(ctx, group)
	if err != nil {
		return simulation{}, fmt.Errorf("error reading settings: %w", err)
	}
	return simulation{
		Group:    string(sel.Group),
		Items:    sel.Items,
		Rotation: sel.Rotation,
	}, nil
}

// scale divides d by speed without dropping below a millisecond
func scale(d time.Duration, speed float64) time.Duration {
	if d <= 0 {
		return d
	}
	scaled := time.Duration(float64(d) / speed)
	if scaled < time.Millisecond {
		return time.Millisecond
	}
	return scaled
}

// runSimulation drives a real scheduler on a loop clock and prints its
// snapshots until ctx ends or the simulated time runs out
func runSimulation(ctx context.Context, out io.Writer, sim simulation, opts simulateOptions) error {
	if opts.speed <= 0 {
		return fmt.Errorf("speed must be positive")
	}

	if len(sim.Items) == 0 {
		if sim.Group == "" {
			fmt.Fprintln(out, "No group selected, nothing is shown")
		} else {
			fmt.Fprintf(out, "Group %s has no eligible items, nothing is shown\n", sim.Group)
		}
		return nil
	}

	cfg := sim.Rotation
	cfg.Delay = scale(cfg.Delay, opts.speed)
	cfg.Duration = scale(cfg.Duration, opts.speed)
	cfg.Interval = scale(cfg.Interval, opts.speed)

	ctx, cancel := context.WithTimeout(ctx, scale(opts.runFor, opts.speed))
	defer cancel()

	loop := rotation.NewLoop(64)
	clock := rotation.NewLoopClock(loop)
	start := clock.Now()

	shown := 0
	printer := rotation.PresenterFunc(func(snap rotation.Snapshot) {
		if snap.Trigger == rotation.TriggerTick && !opts.ticks {
			return
		}
		if snap.Trigger == rotation.TriggerShow {
			shown++
		}

		// Report simulated time
		at := time.Duration(float64(clock.Now().Sub(start)) * opts.speed)
		line := fmt.Sprintf("%8.3fs  %-10s %-8s", at.Seconds(), snap.Phase, snap.Trigger)
		if snap.Item != nil {
			line += fmt.Sprintf(" #%d item=%d %-6s %3.0f%%  %q",
				snap.Index, snap.Item.ID, snap.Item.Type, snap.Progress*100, util.Excerpt(snap.Item.Content, 40))
		}
		fmt.Fprintln(out, line)
	})

	scheduler, err := rotation.New(sim.Items, cfg, clock,
		rotation.WithPresenter(printer),
		rotation.WithTickInterval(scale(opts.tickInterval, opts.speed)),
		rotation.WithFadeDuration(scale(rotation.DefaultFadeDuration, opts.speed)),
	)
	if err != nil {
		return fmt.Errorf("rotation cannot run: %w", err)
	}

	fmt.Fprintf(out, "Simulating %d items for group %s\n", len(sim.Items), sim.Group)

	loop.Post(scheduler.Start)
	loop.Run(ctx)

	// The loop has stopped, so its state is ours now
	fmt.Fprintf(out, "Shown %d overlays\n", shown)
	return nil
}
