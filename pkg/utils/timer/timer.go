// Package timer provides run and stage timing for command handlers.
package timer

import "time"

// Timer tracks the total elapsed time of a run and the elapsed time of the
// current stage. Stages let multi-step commands report per-step timing while
// the total keeps accumulating.
type Timer interface {
	// Start begins the run and the first stage. Calling Start on a running
	// timer resets it.
	Start()
	// NewStage marks the beginning of a new stage.
	NewStage()
	// GetTiming returns the total elapsed time and the current stage's
	// elapsed time.
	GetTiming() (total time.Duration, stage time.Duration)
}

type clockTimer struct {
	start      time.Time
	stageStart time.Time
}

// New returns a Timer backed by the wall clock.
func New() Timer {
	return &clockTimer{}
}

func (t *clockTimer) Start() {
	now := time.Now()
	t.start = now
	t.stageStart = now
}

func (t *clockTimer) NewStage() {
	t.stageStart = time.Now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	if t.start.IsZero() {
		return 0, 0
	}

	now := time.Now()

	return now.Sub(t.start), now.Sub(t.stageStart)
}
