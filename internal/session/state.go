package session

import (
	"github.com/yildizm/ContractLens/internal/analysis"
)

// State is the submission state. Exactly one variant is current.
type State interface {
	Name() string
	isState()
}

// Idle means nothing has been submitted yet
type Idle struct{}

// Validating is entered while the payload is being assembled
type Validating struct{}

// Submitting means a request is in flight
type Submitting struct {
	ID string
}

// Succeeded holds the most recent result
type Succeeded struct {
	Result *analysis.Result
}

// Failed holds the reason the last submission did not produce a result
type Failed struct {
	Reason error
}

func (Idle) Name() string       { return "idle" }
func (Validating) Name() string { return "validating" }
func (Submitting) Name() string { return "submitting" }
func (Succeeded) Name() string  { return "succeeded" }
func (Failed) Name() string     { return "failed" }

func (Idle) isState()       {}
func (Validating) isState() {}
func (Submitting) isState() {}
func (Succeeded) isState()  {}
func (Failed) isState()     {}
