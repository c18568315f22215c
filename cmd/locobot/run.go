package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"locobot/internal/config"

	"github.com/spf13/cobra"
)

var (
	planFlag   bool
	outputFlag string
)

// runCmd executes a single generation without the interactive UI
var runCmd = &cobra.Command{
	Use:   "run [prompt]",
	Short: "Run a single generation and print the result",
	Long: `Submits one prompt through the full generation pipeline: quota check,
prompt composition with the session history and previous artifact, model
dispatch with fallback, and artifact extraction.

The conversation and artifact persist in .locobot/, so repeated runs iterate
on the previous build exactly like the chat interface.

Examples:
  locobot run "build a pomodoro timer"
  locobot run --plan "a multiplayer snake game"
  locobot run --mode GAME_ENGINE "asteroids with juice" -o game.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGeneration,
}

func runGeneration(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.applyMode(modeFlag); err != nil {
		return err
	}

	userPrompt := strings.Join(args, " ")
	start := time.Now()
	res, err := rt.sess.Submit(ctx, userPrompt, planFlag)
	if err != nil {
		return err
	}

	fmt.Println(res.Message.Text)

	if res.ArtifactUpdated {
		path, err := rt.writePreview()
		if err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
		if outputFlag != "" {
			code, _ := rt.sess.Artifact()
			if err := os.WriteFile(outputFlag, []byte(code), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFlag, err)
			}
			path = outputFlag
		}
		fmt.Fprintf(os.Stderr, "Artifact written to %s (%s)\n", path, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	msgs := rt.sess.Messages()
	_, hasArtifact := rt.sess.Artifact()
	remaining, err := rt.gate.Remaining()
	if err != nil {
		return err
	}

	core := "online"
	if rt.offline {
		core = "offline (no API key)"
	}

	fmt.Printf("Workspace:      %s\n", workspace)
	fmt.Printf("Neural core:    %s\n", core)
	fmt.Printf("Primary model:  %s\n", cfg.LLM.PrimaryModel)
	fmt.Printf("Fallback model: %s\n", cfg.LLM.FallbackModel)
	fmt.Printf("Creator mode:   %s\n", rt.sess.Mode())
	fmt.Printf("Messages:       %d\n", len(msgs))
	fmt.Printf("Artifact:       %v\n", hasArtifact)
	fmt.Printf("Quota:          %d/%d remaining\n", remaining, cfg.Quota.DailyLimit)
	return nil
}
