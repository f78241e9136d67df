package syncengine

import (
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/domain"
)

// Step names one phase of a sync cycle.
type Step string

const (
	StepDelete Step = "delete"
	StepPush   Step = "push"
	StepPull   Step = "pull"
)

// Reasons a step is skipped. None of them is an error.
const (
	ReasonNoSession      = "no session"
	ReasonSessionExpired = "session expired"
	ReasonNotPro         = "sync requires pro"
	ReasonNothingToDo    = "nothing to do"
)

// Result describes one step for one entity kind.
type Result struct {
	Step    Step
	Kind    domain.EntityKind
	Skipped string

	// Applied counts rows written: pulled rows stored locally, pushed rows or
	// confirmed deletions.
	Applied   int
	Discarded int // pulled rows dropped because of a pending deletion
	Unchanged int // rows not pushed or pulled because the other side is newer
	Invalid   int

	Err error
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s %s: failed: %v", r.Step, r.Kind, r.Err)
	case r.Skipped != "":
		return fmt.Sprintf("%s %s: skipped (%s)", r.Step, r.Kind, r.Skipped)
	case r.Step == StepPull:
		return fmt.Sprintf("%s %s: %d applied, %d discarded, %d unchanged", r.Step, r.Kind, r.Applied, r.Discarded, r.Unchanged)
	}
	return fmt.Sprintf("%s %s: %d", r.Step, r.Kind, r.Applied)
}

// Report is the outcome of SyncAll.
type Report struct {
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

func (r Report) String() string {
	lines := make([]string, len(r.Results))
	for i, res := range r.Results {
		lines[i] = res.String()
	}
	return strings.Join(lines, "\n")
}
