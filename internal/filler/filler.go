// Package filler completes pitch-indexed sample sets.
//
// For every set under a root directory and every pitch in the configured range
// that has no sample, the nearest present sample is shifted to that pitch.
// Existing files are never touched. A new file appears under its final name
// only once the shifter succeeded, so a run that was interrupted or failed can
// simply be repeated.
package filler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/liuscraft/tunefill/internal/logging"
	"github.com/liuscraft/tunefill/internal/sampleset"
	"github.com/liuscraft/tunefill/internal/shifter"
)

// ErrDestinationExists is returned when another writer created the target
// file while it was being synthesized.
var ErrDestinationExists = errors.New("destination appeared during the run, not overwriting")

type Options struct {
	MinPitch    int // inclusive
	MaxPitch    int // exclusive
	Extension   string
	SkipInvalid bool
	DryRun      bool
	// Jobs is the number of sets processed at once. Pitches within a set are
	// always shifted one after another.
	Jobs int
}

func DefaultOptions() Options {
	return Options{
		MinPitch:  24,
		MaxPitch:  108,
		Extension: ".wav",
		Jobs:      1,
	}
}

// Progress receives run events. Done may be called from several goroutines
// when Jobs > 1.
type Progress interface {
	Start(sets int)
	Done(result *SetResult)
}

// Job is one planned synthesis.
type Job struct {
	Set     string
	Pitch   int
	Source  int
	Factor  float64
	SrcPath string
	DstPath string
}

type Filler struct {
	shifter  shifter.Shifter
	opts     Options
	progress Progress
}

func New(s shifter.Shifter, opts Options) *Filler {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Filler{shifter: s, opts: opts}
}

// SetProgress installs a progress observer. nil disables reporting.
func (f *Filler) SetProgress(p Progress) {
	f.progress = p
}

// Plan lists the jobs that fill every gap of set.
func (f *Filler) Plan(set *sampleset.Set) ([]Job, error) {
	gaps := set.Gaps(f.opts.MinPitch, f.opts.MaxPitch)
	if len(gaps) == 0 {
		return nil, nil
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w in %s", sampleset.ErrNoSamples, set.Dir)
	}

	jobs := make([]Job, 0, len(gaps))
	for _, pitch := range gaps {
		source, err := set.Nearest(pitch)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{
			Set:     set.Name,
			Pitch:   pitch,
			Source:  source,
			Factor:  sampleset.FreqFactor(source, pitch),
			SrcPath: set.Path(source),
			DstPath: set.Path(pitch),
		})
	}
	return jobs, nil
}

// Run fills every set under root. Failures of one set or pitch are recorded
// in the report and do not stop the others. The returned error is non-nil
// only when root cannot be listed or ctx is done.
func (f *Filler) Run(ctx context.Context, root string) (*Report, error) {
	names, err := sampleset.List(root)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root, DryRun: f.opts.DryRun, Sets: make([]*SetResult, len(names))}
	if f.progress != nil {
		f.progress.Start(len(names))
	}
	logging.Infof("Filling %d sample sets under %s, pitches [%d, %d)", len(names), root, f.opts.MinPitch, f.opts.MaxPitch)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Jobs)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result := f.FillSet(gctx, filepath.Join(root, name))
			report.Sets[i] = result
			if f.progress != nil {
				f.progress.Done(result)
			}
			if errors.Is(result.Err, context.Canceled) || errors.Is(result.Err, context.DeadlineExceeded) {
				return result.Err
			}
			return nil
		})
	}

	werr := g.Wait()
	report.compact()
	if werr == nil {
		werr = ctx.Err()
	}
	return report, werr
}

// FillSet fills the gaps of the set in dir.
func (f *Filler) FillSet(ctx context.Context, dir string) *SetResult {
	name := filepath.Base(dir)
	result := &SetResult{Name: name}
	log := logging.WithSet(name)

	set, err := sampleset.Scan(dir, sampleset.ScanOptions{
		Extension:   f.opts.Extension,
		SkipInvalid: f.opts.SkipInvalid,
	})
	if err != nil {
		result.Err = err
		log.Errorf("Scan failed: %v", err)
		return result
	}
	result.Present = set.Len()
	result.Skipped = set.Skipped
	for _, s := range set.Skipped {
		log.Warnf("Skipping %s: not a <pitch>%s file", s, f.opts.Extension)
	}

	jobs, err := f.Plan(set)
	if err != nil {
		result.Err = err
		log.Errorf("Plan failed: %v", err)
		return result
	}
	result.Planned = jobs

	if len(jobs) == 0 {
		log.Debugf("Complete, %d samples present", set.Len())
		return result
	}
	log.Debugf("Present pitches %v, %d to fill", set.Pitches(), len(jobs))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			result.Err = err
			return result
		}

		log.Infof("Shift %s -> %s (pitch %d from %d, factor %s)",
			filepath.Base(job.SrcPath), filepath.Base(job.DstPath), job.Pitch, job.Source, sampleset.FormatFactor(job.Factor))
		if f.opts.DryRun {
			continue
		}

		if err := f.execute(ctx, job); err != nil {
			if ctx.Err() != nil {
				result.Err = ctx.Err()
				return result
			}
			perr := &PitchError{Set: name, Pitch: job.Pitch, Source: job.Source, Err: err}
			result.Failed = append(result.Failed, perr)
			log.Errorf("%v", perr)
			continue
		}
		result.Filled = append(result.Filled, job.Pitch)
	}

	log.Infof("Done: %d filled, %d failed", len(result.Filled), len(result.Failed))
	return result
}

// execute shifts into a hidden partial file and publishes it with a hard
// link, which fails instead of replacing a file that appeared meanwhile.
func (f *Filler) execute(ctx context.Context, job Job) error {
	dir := filepath.Dir(job.DstPath)
	partial := filepath.Join(dir, "."+strconv.Itoa(job.Pitch)+".partial"+f.opts.Extension)
	_ = os.Remove(partial)

	if err := f.shifter.Shift(ctx, job.SrcPath, partial, job.Factor); err != nil {
		_ = os.Remove(partial)
		return err
	}

	defer os.Remove(partial)
	if err := os.Link(partial, job.DstPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, job.DstPath)
		}
		return fmt.Errorf("publish %s: %w", job.DstPath, err)
	}
	return nil
}
