package pool

import (
	"fmt"
	"time"
)

// TimeoutWarning reports a task abandoned because its deadline passed.
type TimeoutWarning struct {
	Index   int
	Timeout time.Duration
}

func (w TimeoutWarning) String() string {
	return fmt.Sprintf("future %d aborted due to timeout", w.Index)
}
