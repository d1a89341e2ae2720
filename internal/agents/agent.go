package agents

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

// Agent produces exactly one SectionResult per invocation. Agents declare
// statically their section name, prerequisite sections and per-call timeout.
// Run receives the already-resolved prerequisites (live or synthetic — a
// dependent never distinguishes) and may only perform outbound network
// calls as side effects.
type Agent interface {
	Name() string
	Dependencies() []string
	Timeout() time.Duration
	Run(ctx context.Context, req models.AnalysisRequest, resolved map[string]models.SectionResult) (models.SectionResult, error)
}

// ErrorKind classifies recoverable agent failures. All three kinds trigger
// fallback substitution in the scheduler; none is surfaced to the caller.
type ErrorKind string

const (
	ErrKindNetwork ErrorKind = "network"
	ErrKindTimeout ErrorKind = "timeout"
	ErrKindSchema  ErrorKind = "schema_mismatch"
)

// Error is the agent failure taxonomy.
type Error struct {
	Kind    ErrorKind
	Section string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("agent %s: %s: %v", e.Section, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind for the named section.
func NewError(kind ErrorKind, section string, err error) *Error {
	return &Error{Kind: kind, Section: section, Err: err}
}

// Classify maps an arbitrary agent failure onto the taxonomy. Context
// deadline and net timeouts become timeout errors, transport failures
// network errors; anything already classified passes through.
func Classify(section string, err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(ErrKindTimeout, section, err)
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return NewError(ErrKindTimeout, section, err)
		}
		return NewError(ErrKindNetwork, section, err)
	}
	return NewError(ErrKindNetwork, section, err)
}
