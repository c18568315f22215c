package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"locobot/internal/extract"
	"locobot/internal/gateway"
	"locobot/internal/prompt"
	"locobot/internal/quota"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// go.opencensus.io starts a background worker in its package init;
	// it is not a goroutine leaked by this package.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// scriptedDispatcher returns a fixed outcome and records prompts.
type scriptedDispatcher struct {
	mu      sync.Mutex
	outcome gateway.Outcome
	prompts []string
	block   chan struct{} // when set, Dispatch waits until closed
}

func (d *scriptedDispatcher) Dispatch(_ context.Context, promptText string) gateway.Outcome {
	d.mu.Lock()
	d.prompts = append(d.prompts, promptText)
	block := d.block
	d.mu.Unlock()
	if block != nil {
		<-block
	}
	return d.outcome
}

func (d *scriptedDispatcher) promptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.prompts)
}

func successOutcome(text string) gateway.Outcome {
	return gateway.Outcome{Text: text, Model: "pro"}
}

func TestSubmit_RejectsEmptyPrompt(t *testing.T) {
	s, err := New(&scriptedDispatcher{}, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "   \n\t", false)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, s.Messages(), "rejected submissions commit nothing")
}

func TestSubmit_RejectsConcurrentSubmissions(t *testing.T) {
	block := make(chan struct{})
	d := &scriptedDispatcher{outcome: successOutcome("ok"), block: block}
	s, err := New(d, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Submit(context.Background(), "first", false)
	}()

	// Wait until the first submission reaches the dispatcher.
	require.Eventually(t, func() bool { return d.promptCount() == 1 }, time.Second, time.Millisecond)

	_, err = s.Submit(context.Background(), "second", false)
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	<-done
}

func TestSubmit_PlanModeCommitsPlanMessage(t *testing.T) {
	d := &scriptedDispatcher{outcome: successOutcome("# The Plan\n1. do things")}
	s, err := New(d, nil)
	require.NoError(t, err)

	res, err := s.Submit(context.Background(), "plan a snake game", true)
	require.NoError(t, err)

	assert.True(t, res.Message.IsPlan)
	assert.Equal(t, RoleAssistant, res.Message.Role)
	assert.Equal(t, "# The Plan\n1. do things", res.Message.Text)
	assert.False(t, res.ArtifactUpdated)

	_, hasArtifact := s.Artifact()
	assert.False(t, hasArtifact, "plan mode never touches the artifact")
}

func TestSubmit_ArtifactModeExtractsAndReplacesArtifact(t *testing.T) {
	raw := "Built it!\n```html\n<!DOCTYPE html><html><body>v1</body></html>\n```"
	d := &scriptedDispatcher{outcome: successOutcome(raw)}
	s, err := New(d, nil)
	require.NoError(t, err)

	res, err := s.Submit(context.Background(), "build it", false)
	require.NoError(t, err)

	assert.True(t, res.ArtifactUpdated)
	assert.Equal(t, "Built it!", res.Message.Text)

	code, ok := s.Artifact()
	require.True(t, ok)
	assert.Contains(t, code, "<body>v1</body>")
}

func TestSubmit_ExtractionMissIsNotAnError(t *testing.T) {
	d := &scriptedDispatcher{outcome: successOutcome("I need more details before generating.")}
	s, err := New(d, nil)
	require.NoError(t, err)

	res, err := s.Submit(context.Background(), "build it", false)
	require.NoError(t, err)

	assert.False(t, res.ArtifactUpdated)
	assert.Equal(t, "I need more details before generating.", res.Message.Text)
	_, ok := s.Artifact()
	assert.False(t, ok)
}

func TestSubmit_FailureCommitsSingleMessage(t *testing.T) {
	d := &scriptedDispatcher{outcome: gateway.Outcome{
		Failure: &gateway.Failure{Kind: gateway.FailureHard, Message: "Generation Failed: boom"},
	}}
	s, err := New(d, nil)
	require.NoError(t, err)

	res, err := s.Submit(context.Background(), "build it", false)
	require.NoError(t, err, "failures never escape the orchestrator")
	assert.Equal(t, "Generation Failed: boom", res.Message.Text)

	msgs := s.Messages()
	require.Len(t, msgs, 2) // user + assistant failure
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)

	// The session is resubmittable after a failure.
	d.outcome = successOutcome("recovered")
	_, err = s.Submit(context.Background(), "again", false)
	assert.NoError(t, err)
}

func TestSubmit_HistoryExcludesCurrentPrompt(t *testing.T) {
	d := &scriptedDispatcher{outcome: successOutcome("first answer")}
	s, err := New(d, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "first question", false)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "second question", false)
	require.NoError(t, err)

	require.Len(t, d.prompts, 2)
	assert.NotContains(t, d.prompts[0], "CONVERSATION_HISTORY")
	assert.Contains(t, d.prompts[1], "USER: first question")
	assert.NotContains(t, d.prompts[1], "USER: second question")
}

func TestSubmit_PreviousArtifactFlowsIntoPrompt(t *testing.T) {
	raw := "```html\n<!DOCTYPE html><html><body>v1</body></html>\n```"
	d := &scriptedDispatcher{outcome: successOutcome(raw)}
	s, err := New(d, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "build v1", false)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "now make it blue", false)
	require.NoError(t, err)

	require.Len(t, d.prompts, 2)
	assert.Contains(t, d.prompts[0], prompt.StartFreshMarker)
	assert.Contains(t, d.prompts[1], "<body>v1</body>")
	assert.NotContains(t, d.prompts[1], prompt.StartFreshMarker)
}

func TestSubmit_AgentsReturnToIdle(t *testing.T) {
	d := &scriptedDispatcher{outcome: successOutcome("ok")}
	s, err := New(d, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "go", false)
	require.NoError(t, err)

	for _, a := range s.Agents() {
		assert.Equal(t, AgentIdle, a.Status)
	}
}

// countingProvider fails the test if any call reaches the provider.
type countingProvider struct {
	t     *testing.T
	calls int
}

func (p *countingProvider) Generate(context.Context, string, string, gateway.CallOptions) (string, error) {
	p.calls++
	return "", errors.New("should not be called")
}

func TestSubmit_EndToEndQuotaDenial(t *testing.T) {
	// Exhausted quota: the denial text is committed, no provider call is
	// made, and the artifact does not change.
	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := quota.NewMemoryStore()
	gate := quota.NewGate(store, 1, func() time.Time { return day })

	_, err := gate.CheckAndConsume() // burn the only slot
	require.NoError(t, err)

	provider := &countingProvider{t: t}
	gw := gateway.New(provider, gate, gateway.Options{PrimaryModel: "pro", FallbackModel: "flash"})

	s, err := New(gw, nil)
	require.NoError(t, err)

	res, err := s.Submit(context.Background(), "build something", false)
	require.NoError(t, err)

	assert.Contains(t, res.Message.Text, "DAILY LIMIT REACHED")
	assert.Contains(t, res.Message.Text, "1/1")
	assert.Zero(t, provider.calls, "no provider call on quota denial")

	_, ok := s.Artifact()
	assert.False(t, ok)
}

func TestSession_PersistsAndRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locobot.db")
	store, err := OpenStore(path)
	require.NoError(t, err)

	raw := "```html\n<!DOCTYPE html><html><body>saved</body></html>\n```"
	d := &scriptedDispatcher{outcome: successOutcome(raw)}
	s, err := New(d, store)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), "build it", false)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopen: messages and artifact come back.
	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	restored, err := New(&scriptedDispatcher{}, store)
	require.NoError(t, err)

	msgs := restored.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "build it", msgs[0].Text)
	assert.Equal(t, extract.ConfirmationMessage, msgs[1].Text)

	code, ok := restored.Artifact()
	require.True(t, ok)
	assert.Contains(t, code, "<body>saved</body>")
}
