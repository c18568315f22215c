package gateway

// FailureKind classifies a dispatch failure for message selection upstream.
type FailureKind int

const (
	// FailureConfiguration means no provider credential is configured.
	FailureConfiguration FailureKind = iota
	// FailureQuotaExceeded means the daily budget denied the request before
	// any network call.
	FailureQuotaExceeded
	// FailureHard is any provider error that was not (or could not be)
	// recovered by the fallback model.
	FailureHard
)

func (k FailureKind) String() string {
	switch k {
	case FailureConfiguration:
		return "configuration"
	case FailureQuotaExceeded:
		return "quota_exceeded"
	case FailureHard:
		return "hard_failure"
	}
	return "unknown"
}

// Failure carries the kind and the user-relevant message text.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Outcome is the result of one dispatch: either generated text tagged with
// the model that produced it, or a classified failure. Exactly one of the
// two is set.
type Outcome struct {
	Text    string
	Model   string
	Failure *Failure
}

// OK reports whether the dispatch succeeded.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

func success(text, model string) Outcome {
	return Outcome{Text: text, Model: model}
}

func failure(kind FailureKind, message string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Message: message}}
}
