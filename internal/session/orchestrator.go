// Package session orchestrates one generation lifecycle: quota-gated
// dispatch, extraction, and message commits consumed by the UI shell. The
// orchestrator is the only entry point into the core; no error escapes it
// uncaught.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"locobot/internal/extract"
	"locobot/internal/gateway"
	"locobot/internal/logging"
	"locobot/internal/prompt"
)

var (
	// ErrEmptyPrompt rejects empty or whitespace-only submissions before a
	// run starts.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrBusy rejects a submission while a prior run is in flight. At most
	// one generation runs per session.
	ErrBusy = errors.New("a generation is already in flight")
)

// Dispatcher is the gateway surface the orchestrator depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, promptText string) gateway.Outcome
}

// Result is what one successful submission produced.
type Result struct {
	Message         Message
	ArtifactUpdated bool
}

// Session holds the conversation state for one user. Store may be nil, in
// which case nothing is persisted.
type Session struct {
	dispatcher Dispatcher
	store      *Store
	roster     *roster
	now        func() time.Time

	mu       chan struct{} // semaphore guarding the in-flight run
	stateMu  sync.Mutex
	mode     prompt.Mode
	messages []Message
	artifact string
}

// New creates a session over the given dispatcher.
func New(dispatcher Dispatcher, store *Store) (*Session, error) {
	s := &Session{
		dispatcher: dispatcher,
		store:      store,
		roster:     newRoster(),
		now:        time.Now,
		mu:         make(chan struct{}, 1),
		mode:       prompt.ModeWebArchitect,
	}

	if store != nil {
		messages, err := store.Messages()
		if err != nil {
			return nil, err
		}
		s.messages = messages
		code, ok, err := store.Artifact()
		if err != nil {
			return nil, err
		}
		if ok {
			s.artifact = code
		}
		logging.Session("Session restored: %d messages, artifact=%v", len(messages), ok)
	}

	return s, nil
}

// SetMode selects the active creator mode for subsequent submissions.
func (s *Session) SetMode(m prompt.Mode) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.mode = m
}

// Mode returns the active creator mode.
func (s *Session) Mode() prompt.Mode {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.mode
}

// Messages returns a snapshot of the committed conversation log.
func (s *Session) Messages() []Message {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Artifact returns the current artifact text and whether one exists.
func (s *Session) Artifact() (string, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.artifact, s.artifact != ""
}

// Agents returns the cosmetic agent status vector.
func (s *Session) Agents() []Agent {
	return s.roster.snapshot()
}

// Submit runs one generation lifecycle. The returned error is non-nil only
// for precondition rejections (empty prompt, concurrent submission); every
// started run commits exactly one assistant message, failures included.
func (s *Session) Submit(ctx context.Context, userPrompt string, planMode bool) (Result, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return Result{}, ErrEmptyPrompt
	}

	select {
	case s.mu <- struct{}{}:
	default:
		return Result{}, ErrBusy
	}
	defer func() { <-s.mu }()

	s.roster.setAll(AgentThinking)
	defer s.roster.setAll(AgentIdle)

	// History is the log as it stood before this submission.
	s.stateMu.Lock()
	history := make([]prompt.HistoryEntry, 0, len(s.messages))
	for _, m := range s.messages {
		history = append(history, prompt.HistoryEntry{Role: string(m.Role), Text: m.Text})
	}
	mode := s.mode
	previousArtifact := s.artifact
	s.stateMu.Unlock()

	s.commit(newMessage(RoleUser, userPrompt, planMode, s.now()))
	logging.Session("Submission started: plan=%v mode=%s prompt_len=%d", planMode, mode, len(userPrompt))

	composed := prompt.Compose(prompt.Request{
		Prompt:           userPrompt,
		Mode:             mode,
		History:          history,
		PreviousArtifact: previousArtifact,
		PlanMode:         planMode,
	})

	outcome := s.dispatcher.Dispatch(ctx, composed)

	s.roster.setAll(AgentWorking)

	if !outcome.OK() {
		msg := s.commitFailure(outcome.Failure)
		s.roster.setAll(AgentError)
		return Result{Message: msg}, nil
	}

	if planMode {
		msg := newMessage(RoleAssistant, outcome.Text, true, s.now())
		s.commit(msg)
		s.roster.setAll(AgentDone)
		logging.Session("Plan committed: model=%s len=%d", outcome.Model, len(outcome.Text))
		return Result{Message: msg}, nil
	}

	artifact := extract.Extract(outcome.Text, false)

	updated := false
	if artifact.HasCode {
		s.stateMu.Lock()
		s.artifact = artifact.Code
		s.stateMu.Unlock()
		if s.store != nil {
			if err := s.store.SaveArtifact(artifact.Code); err != nil {
				logging.StoreError("Failed to persist artifact: %v", err)
			}
		}
		updated = true
	}

	msg := newMessage(RoleAssistant, artifact.Narrative, false, s.now())
	s.commit(msg)
	s.roster.setAll(AgentDone)
	logging.Session("Response committed: model=%s artifact_updated=%v", outcome.Model, updated)
	return Result{Message: msg, ArtifactUpdated: updated}, nil
}

// commit appends a message to the log and persists it when a store is
// configured.
func (s *Session) commit(m Message) {
	s.stateMu.Lock()
	s.messages = append(s.messages, m)
	s.stateMu.Unlock()

	if s.store != nil {
		if err := s.store.AppendMessage(m); err != nil {
			logging.StoreError("Failed to persist message %s: %v", m.ID, err)
		}
	}
}

// commitFailure maps a classified failure to its user-visible message
// variant. All variants are terminal for the submission; the session stays
// resubmittable.
func (s *Session) commitFailure(f *gateway.Failure) Message {
	var text string
	switch f.Kind {
	case gateway.FailureConfiguration:
		text = f.Message
	case gateway.FailureQuotaExceeded:
		text = f.Message
	default:
		text = f.Message
		if text == "" {
			text = "Agent Orchestration Failed. Please retry."
		}
	}

	logging.SessionError("Submission failed: kind=%s", f.Kind)
	msg := newMessage(RoleAssistant, text, false, s.now())
	s.commit(msg)
	return msg
}
