// Package scriptheal validates AI-generated script-node bodies with a fixed
// static-pattern scan and a bounded self-correction retry cycle.
package scriptheal

import (
	"context"
	"log/slog"

	"github.com/halvard/skein/internal/apperr"
)

// State is one phase of the validation state machine.
type State string

const (
	StateGenerated            State = "generated"
	StateValidating           State = "validating"
	StateCorrecting           State = "correcting"
	StateAccepted             State = "accepted"
	StateAcceptedWithWarnings State = "accepted_with_warnings"
)

// DefaultMaxRetries is the default correction budget.
const DefaultMaxRetries = 2

// CorrectionRequest carries everything the corrector needs to produce a new
// candidate: the failing source, each finding, and language-specific guidance.
type CorrectionRequest struct {
	Language string  `json:"language"`
	Source   string  `json:"source"`
	Issues   []Issue `json:"issues"`
	Guidance string  `json:"guidance"`
}

// Corrector produces a corrected script candidate. Implemented by the
// outbound AI collaborator; this package owns no network plumbing.
type Corrector interface {
	Correct(ctx context.Context, req CorrectionRequest) (string, error)
}

// Outcome is the terminal result of one healing run. The last candidate is
// always returned, even when issues remain as warnings.
type Outcome struct {
	State    State   `json:"state"`
	Source   string  `json:"source"`
	Warnings []Issue `json:"warnings,omitempty"`
	Attempts int     `json:"attempts"`
}

// Loop is the bounded self-correction cycle.
type Loop struct {
	corrector  Corrector
	maxRetries int
}

// NewLoop builds a Loop. corrector may be nil, in which case findings go
// straight to warnings. maxRetries <= 0 falls back to DefaultMaxRetries.
func NewLoop(corrector Corrector, maxRetries int) *Loop {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Loop{corrector: corrector, maxRetries: maxRetries}
}

// Run drives a candidate through Generated -> Validating -> (Correcting ->
// Validating)* until it is accepted or the retry budget runs out. A corrector
// transport failure surfaces as a provider error alongside the last candidate.
func (l *Loop) Run(ctx context.Context, language, source string) (Outcome, error) {
	candidate := source
	attempts := 0

	for {
		issues := Scan(language, candidate)
		if len(issues) == 0 {
			return Outcome{State: StateAccepted, Source: candidate, Attempts: attempts}, nil
		}

		if l.corrector == nil || attempts >= l.maxRetries {
			return Outcome{
				State:    StateAcceptedWithWarnings,
				Source:   candidate,
				Warnings: issues,
				Attempts: attempts,
			}, nil
		}

		slog.Info("scriptheal: correction round",
			slog.String("language", language),
			slog.Int("attempt", attempts+1),
			slog.Int("issues", len(issues)))

		corrected, err := l.corrector.Correct(ctx, CorrectionRequest{
			Language: language,
			Source:   candidate,
			Issues:   issues,
			Guidance: guidance[language],
		})
		attempts++
		if err != nil {
			return Outcome{
				State:    StateAcceptedWithWarnings,
				Source:   candidate,
				Warnings: issues,
				Attempts: attempts,
			}, apperr.Provider(err, "script correction failed")
		}
		candidate = corrected
	}
}
