package task

import (
	"fmt"

	"taskforge-controlplane/pkg/errutil"
)

// DependencyNotSatisfiedError blocks a transition into IN_PROGRESS or
// COMPLETED while dependencies are still open.
type DependencyNotSatisfiedError struct {
	TaskID      string
	Unsatisfied []string
}

func (e *DependencyNotSatisfiedError) Error() string {
	return fmt.Sprintf("task %s has %d unsatisfied dependencies", e.TaskID, len(e.Unsatisfied))
}

func (e *DependencyNotSatisfiedError) Status() errutil.CoreStatus {
	return errutil.StatusDependencyNotSatisfied
}

func (e *DependencyNotSatisfiedError) JSON() interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":        errutil.StatusDependencyNotSatisfied,
			"message":     "dependencies are not completed",
			"count":       len(e.Unsatisfied),
			"unsatisfied": e.Unsatisfied,
		},
	}
}
