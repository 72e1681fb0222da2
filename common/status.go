package common

var statusStrings map[Status]string

func init() {
	statusStrings = make(map[Status]string)
	statusStrings[Continue] = "Continue"
	statusStrings[RootSuccessfullyFound] = "RootSuccessfullyFound"

	statusStrings[NoRootInInterval] = "NoRootInInterval"
	statusStrings[NonmonotonicFunctionOnInterval] = "NonmonotonicFunctionOnInterval"
	statusStrings[InitialPointOutsideInterval] = "InitialPointOutsideInterval"
	statusStrings[IncorrectIntervalBoundaries] = "IncorrectIntervalBoundaries"
}

// Status is a type for expressing how a root search ended.
// Zero signifies that no terminal status has been reached (the search has
// not run, or was stopped by a run limit). Positive values indicate
// success, negative values express the reason no root could be produced.
//
// The set of terminal values is closed; callers branch on them directly.
type Status int

func (s Status) String() string {
	str, ok := statusStrings[s]
	if !ok {
		return "UnregisteredStatus"
	}
	return str
}

// Success reports whether s is a successful terminal status.
func (s Status) Success() bool { return s > Continue }

// Failed reports whether s is a failed terminal status.
func (s Status) Failed() bool { return s < Continue }

const (
	Continue Status = iota
	RootSuccessfullyFound
)

const (
	_                           = iota
	NoRootInInterval     Status = -1 * iota
	NonmonotonicFunctionOnInterval
	InitialPointOutsideInterval
	IncorrectIntervalBoundaries
)
