package core

type CallState int

const (
	CallStateUnknown CallState = iota
	CallStateExecuting
	CallStateExecutingFailed
	CallStateRetrieving
	CallStateRetrievingFailed
	CallStateSucceeded
	CallStateCanceled
)

func CallStateFromString(s string) CallState {
	switch s {
	case CallStateUnknown.String():
		return CallStateUnknown

	case CallStateExecuting.String():
		return CallStateExecuting
	case CallStateExecutingFailed.String():
		return CallStateExecutingFailed

	case CallStateRetrieving.String():
		return CallStateRetrieving
	case CallStateRetrievingFailed.String():
		return CallStateRetrievingFailed

	case CallStateSucceeded.String():
		return CallStateSucceeded

	case CallStateCanceled.String():
		return CallStateCanceled

	default:
		return CallStateUnknown
	}
}

func (s CallState) String() string {
	switch s {
	case CallStateUnknown:
		return "unknown"

	case CallStateExecuting:
		return "executing"
	case CallStateExecutingFailed:
		return "executing_failed"

	case CallStateRetrieving:
		return "retrieving"
	case CallStateRetrievingFailed:
		return "retrieving_failed"

	case CallStateSucceeded:
		return "succeeded"

	case CallStateCanceled:
		return "canceled"

	default:
		return "unknown"
	}
}

// IsFailed reports whether the state is a terminal error state.
func (s CallState) IsFailed() bool {
	return s == CallStateExecutingFailed || s == CallStateRetrievingFailed || s == CallStateCanceled
}
