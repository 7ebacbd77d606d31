// Where: fnctl/internal/infra/discovery/errors.go
// What: Discovery failure types.
// Why: Let callers tell explicit runner errors from silent abnormal exits.
package discovery

import "errors"

// ErrUnknownProblem is reported when the runner exits nonzero without a message.
var ErrUnknownProblem = errors.New("unknown problem while trying to parse function triggers")

// DiscoveryError is the single failure category of discovery.
// Abnormal marks a runner that terminated without reporting why.
type DiscoveryError struct {
	Message  string
	Abnormal bool
	ExitCode int
	Err      error
}

func (e *DiscoveryError) Error() string {
	if e.Abnormal {
		return ErrUnknownProblem.Error()
	}
	return e.Message
}

func (e *DiscoveryError) Unwrap() []error {
	var errs []error
	if e.Abnormal {
		errs = append(errs, ErrUnknownProblem)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func abnormalExit(code int, cause error) *DiscoveryError {
	return &DiscoveryError{Abnormal: true, ExitCode: code, Err: cause}
}
