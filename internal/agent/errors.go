package agent

import "fmt"

// BudgetExceededError reports that a conversation hit its turn or tool-call
// ceiling. It accompanies a best-effort Result rather than replacing one.
type BudgetExceededError struct {
	What string
	Used int
	Max  int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %s %d/%d", e.What, e.Used, e.Max)
}

// TimeoutError reports that the caller-imposed deadline expired before the
// conversation reached a terminal state. Unlike a turn-ceiling stop it
// carries no content guarantee.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conversation timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
