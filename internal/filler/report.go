package filler

import (
	"fmt"

	"go.uber.org/multierr"
)

// PitchError reports a single pitch that could not be synthesized.
type PitchError struct {
	Set    string
	Pitch  int
	Source int
	Err    error
}

func (e *PitchError) Error() string {
	return fmt.Sprintf("set %s: pitch %d from %d: %v", e.Set, e.Pitch, e.Source, e.Err)
}

func (e *PitchError) Unwrap() error {
	return e.Err
}

// SetResult is the outcome for one sample set.
type SetResult struct {
	Name    string
	Present int
	Skipped []string
	Planned []Job
	Filled  []int
	Failed  []*PitchError
	// Err is set when the set could not be processed at all.
	Err error
}

// OK reports whether the set finished without any error.
func (r *SetResult) OK() bool {
	return r.Err == nil && len(r.Failed) == 0
}

// Error combines the set error and every pitch error.
func (r *SetResult) Error() error {
	var err error
	if r.Err != nil {
		err = multierr.Append(err, fmt.Errorf("set %s: %w", r.Name, r.Err))
	}
	for _, perr := range r.Failed {
		err = multierr.Append(err, perr)
	}
	return err
}

// Report is the outcome of a run, one entry per set in name order.
type Report struct {
	Root   string
	DryRun bool
	Sets   []*SetResult
}

func (r *Report) Planned() int {
	n := 0
	for _, s := range r.Sets {
		n += len(s.Planned)
	}
	return n
}

func (r *Report) Filled() int {
	n := 0
	for _, s := range r.Sets {
		n += len(s.Filled)
	}
	return n
}

func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sets {
		n += len(s.Failed)
	}
	return n
}

// FailedSets counts sets that could not be processed at all.
func (r *Report) FailedSets() int {
	n := 0
	for _, s := range r.Sets {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Err combines every error of the run; nil when all sets succeeded.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Sets {
		err = multierr.Append(err, s.Error())
	}
	return err
}

// compact drops the slots of sets that never started.
func (r *Report) compact() {
	kept := r.Sets[:0]
	for _, s := range r.Sets {
		if s != nil {
			kept = append(kept, s)
		}
	}
	r.Sets = kept
}
