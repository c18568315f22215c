// Package gateway dispatches composed prompts to the model provider. It
// enforces the quota gate before any network call and escalates to the
// fallback model on capacity-class failures of the primary.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"locobot/internal/logging"
	"locobot/internal/quota"
)

// OfflineMessage is surfaced when no provider credential is configured.
const OfflineMessage = "Neural core offline. Please configure API_KEY."

// DefaultCallTimeout bounds a single model call. The source had no
// cancellation at all; a timed-out primary call is treated like a capacity
// failure so it stays eligible for the one-shot fallback.
const DefaultCallTimeout = 5 * time.Minute

// Gateway routes one prompt to the primary model, falling back to the
// secondary model only on capacity-class errors.
type Gateway struct {
	provider       Provider
	gate           *quota.Gate
	primaryModel   string
	fallbackModel  string
	thinkingBudget int32
	callTimeout    time.Duration
}

// Options configures a Gateway.
type Options struct {
	PrimaryModel   string
	FallbackModel  string
	ThinkingBudget int32
	CallTimeout    time.Duration
}

// New creates a gateway. A nil provider puts the gateway in offline mode:
// every dispatch fails with a configuration error and no network call.
func New(provider Provider, gate *quota.Gate, opts Options) *Gateway {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Gateway{
		provider:       provider,
		gate:           gate,
		primaryModel:   opts.PrimaryModel,
		fallbackModel:  opts.FallbackModel,
		thinkingBudget: opts.ThinkingBudget,
		callTimeout:    opts.CallTimeout,
	}
}

// Dispatch sends the prompt through the quota gate and to the provider.
// It never returns an error: every path is a classified Outcome.
func (g *Gateway) Dispatch(ctx context.Context, promptText string) Outcome {
	if g.provider == nil {
		logging.API("Dispatch rejected: no provider credential configured")
		return failure(FailureConfiguration, OfflineMessage)
	}

	decision, err := g.gate.CheckAndConsume()
	if err != nil {
		logging.APIError("Quota check failed: %v", err)
		return failure(FailureHard, "Generation Failed: "+err.Error())
	}
	if !decision.Allowed {
		return failure(FailureQuotaExceeded, decision.Message)
	}

	text, primaryErr := g.call(ctx, g.primaryModel, promptText, CallOptions{ThinkingBudget: g.thinkingBudget})
	if primaryErr == nil {
		return success(text, g.primaryModel)
	}

	// The caller going away is not a capacity condition; do not burn a
	// second call on it.
	if ctx.Err() != nil {
		return failure(FailureHard, "Generation Failed: "+primaryErr.Error())
	}

	if !isCapacityError(primaryErr) {
		logging.APIWarn("Primary model %s failed (no fallback): %v", g.primaryModel, primaryErr)
		return failure(FailureHard, "Generation Failed: "+primaryErr.Error())
	}

	// Capacity-class failure: one-shot retry on the fallback model with the
	// unchanged prompt.
	logging.APIWarn("Primary model %s capacity failure, escalating to %s: %v", g.primaryModel, g.fallbackModel, primaryErr)
	text, fallbackErr := g.call(ctx, g.fallbackModel, promptText, CallOptions{})
	if fallbackErr == nil {
		return success(text, g.fallbackModel)
	}

	logging.APIError("Fallback model %s also failed: %v", g.fallbackModel, fallbackErr)
	return failure(FailureHard, "CRITICAL FAILURE: "+fallbackErr.Error())
}

// PrimaryModel returns the configured primary model id.
func (g *Gateway) PrimaryModel() string { return g.primaryModel }

// FallbackModel returns the configured fallback model id.
func (g *Gateway) FallbackModel() string { return g.fallbackModel }

func (g *Gateway) call(ctx context.Context, model, promptText string, opts CallOptions) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	return g.provider.Generate(callCtx, model, promptText, opts)
}

// isCapacityError reports whether an error looks like provider-side
// capacity/quota exhaustion. The provider exposes no structured codes, only
// message text, so this is a deliberate substring heuristic: an HTTP 429
// indicator or the word "quota", case-insensitive. Per-call timeouts are
// treated the same way.
func isCapacityError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}
