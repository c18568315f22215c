// Package deploy provides the simulated deployment stepper. It is pure UI
// theater: timer-driven log lines and step transitions with no real backend,
// kept fully independent of the generation orchestrator.
package deploy

import (
	"context"
	"time"

	"locobot/internal/logging"
)

// Status is the coarse deployment phase shown by the stepper.
type Status string

const (
	StatusIdle         Status = "IDLE"
	StatusProvisioning Status = "PROVISIONING"
	StatusBuilding     Status = "BUILDING"
	StatusDeploying    Status = "DEPLOYING"
	StatusLive         Status = "LIVE"
)

// Event is one emitted stepper transition.
type Event struct {
	Step   int
	Status Status
	Log    string
}

// stage is one scripted timer entry: offset from start, log line, step and
// status to report.
type stage struct {
	offset time.Duration
	log    string
	step   int
	status Status
}

var script = []stage{
	{0, "> Initializing Vercel Container...", 1, StatusProvisioning},
	{1000 * time.Millisecond, "> Allocating CPU/RAM...", 1, StatusProvisioning},
	{2500 * time.Millisecond, "> Setting up PostgreSQL Database...", 2, StatusProvisioning},
	{4000 * time.Millisecond, "> Configuring Authentication (Supabase)...", 3, StatusBuilding},
	{5500 * time.Millisecond, "> Running Build Command...", 4, StatusBuilding},
	{7000 * time.Millisecond, "> Deploying to Edge Network...", 5, StatusDeploying},
	{8500 * time.Millisecond, "> Deployment complete. Your app is LIVE.", 6, StatusLive},
}

// Simulator replays the scripted deployment at a configurable speed.
type Simulator struct {
	speed float64 // 1.0 = real time; tests use large values
}

// NewSimulator creates a real-time simulator.
func NewSimulator() *Simulator {
	return &Simulator{speed: 1.0}
}

// NewSimulatorWithSpeed creates a simulator with scaled timers. speed > 1
// runs faster than the script.
func NewSimulatorWithSpeed(speed float64) *Simulator {
	if speed <= 0 {
		speed = 1.0
	}
	return &Simulator{speed: speed}
}

// Run walks the deployment script, sending each event on out. It returns
// when the script completes or the context is cancelled. The channel is not
// closed; the caller owns it.
func (s *Simulator) Run(ctx context.Context, out chan<- Event) error {
	start := time.Now()
	logging.Deploy("Simulated deployment started")

	for _, st := range script {
		wait := time.Duration(float64(st.offset)/s.speed) - time.Since(start)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		ev := Event{Step: st.step, Status: st.status, Log: st.log}
		select {
		case out <- ev:
			logging.Deploy("step=%d status=%s %s", ev.Step, ev.Status, ev.Log)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logging.Deploy("Simulated deployment finished")
	return nil
}
