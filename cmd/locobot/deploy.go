package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"locobot/internal/deploy"

	"locobot/cmd/locobot/ui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var deploySpeed float64

// deployCmd replays the scripted deployment stepper in the terminal
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Run the simulated deployment pipeline",
	Long: `Replays the deployment pipeline for the current artifact: container
provisioning, database setup, build, and edge rollout. The pipeline is a
simulation; nothing leaves the machine.`,
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	styles := ui.DefaultStyles()

	sim := deploy.NewSimulatorWithSpeed(deploySpeed)
	events := make(chan deploy.Event, 8)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(events)
		return sim.Run(ctx, events)
	})

	var last deploy.Status
	for ev := range events {
		line := ev.Log
		switch ev.Status {
		case deploy.StatusLive:
			line = styles.Success.Render(line)
		case deploy.StatusDeploying:
			line = styles.Warning.Render(line)
		default:
			line = styles.Muted.Render(line)
		}
		fmt.Printf("[%d/6] %s\n", ev.Step, line)
		last = ev.Status
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("deployment interrupted: %w", err)
	}
	if last == deploy.StatusLive {
		fmt.Println(styles.Bold.Render("Status: LIVE"))
	}
	return nil
}
