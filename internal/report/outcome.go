package report

import (
	"k8s.io/utils/ptr"
)

// Outcome is the category of the last completed build of a job.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnstable
	OutcomeFailure
	OutcomeError
)

// Outcomes lists every category in report order.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeUnstable, OutcomeFailure, OutcomeError}

const (
	ResultSuccess  = "SUCCESS"
	ResultUnstable = "UNSTABLE"
	ResultFailure  = "FAILURE"
)

// Classify maps a Jenkins build result to its category. A missing or unknown
// result (ABORTED, NOT_BUILT...) is an Error.
func Classify(result *string) Outcome {
	switch ptr.Deref(result, "") {
	case ResultSuccess:
		return OutcomeSuccess
	case ResultUnstable:
		return OutcomeUnstable
	case ResultFailure:
		return OutcomeFailure
	default:
		return OutcomeError
	}
}

// NeedsResolution reports whether the blockers of a job with this outcome
// must be looked up in the issue trackers.
func (o Outcome) NeedsResolution() bool {
	return o == OutcomeUnstable || o == OutcomeFailure
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return ResultSuccess
	case OutcomeUnstable:
		return ResultUnstable
	case OutcomeFailure:
		return ResultFailure
	default:
		return "ERROR"
	}
}

// MarshalText renders the outcome by name in JSON documents and map keys.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText reads an outcome saved by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	*o = Classify(ptr.To(string(text)))
	return nil
}
