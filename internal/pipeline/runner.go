package pipeline

import (
	"fmt"
	"time"

	"martdrop/internal/ui"
	"martdrop/pkg/errors"
)

// Stage is one step of the build sequence. Stages run in order; the
// first failure halts the run, mirroring a chained script that exits
// on the first broken step.
type Stage struct {
	Name        string
	Description string
	Run         func() error
}

// StageResult records the outcome of one stage.
type StageResult struct {
	Name     string
	Duration time.Duration
	Err      error
	Skipped  bool
}

// Options restricts which stages run.
type Options struct {
	Only  []string // run only these stages
	From  string   // start at this stage
	Skip  []string // never run these stages
	Quiet bool
}

// Runner executes stages sequentially.
type Runner struct {
	stages []Stage
}

// NewRunner creates a Runner over a fixed stage list.
func NewRunner(stages []Stage) *Runner {
	return &Runner{stages: stages}
}

// StageNames lists the configured stages in execution order.
func (r *Runner) StageNames() []string {
	names := make([]string, len(r.stages))
	for i, stage := range r.stages {
		names[i] = stage.Name
	}
	return names
}

// Run executes the selected stages in order and halts on the first
// error. Stages after a failure are reported as skipped. There are no
// retries; a failed build is re-run from the start.
func (r *Runner) Run(opts Options) ([]StageResult, error) {
	selected, err := r.selectStages(opts)
	if err != nil {
		return nil, err
	}

	results := make([]StageResult, 0, len(selected))
	failed := false

	var bar *ui.ProgressBar
	if !opts.Quiet {
		bar = ui.NewProgressBar(len(selected))
	}

	for i, stage := range selected {
		if failed {
			results = append(results, StageResult{Name: stage.Name, Skipped: true})
			continue
		}

		start := time.Now()
		stageErr := stage.Run()
		elapsed := time.Since(start)

		if bar != nil {
			bar.Update(i+1, stage.Description, stageErr == nil)
		}

		results = append(results, StageResult{Name: stage.Name, Duration: elapsed, Err: stageErr})

		if stageErr != nil {
			failed = true
			err = errors.Wrap(stageErr, errors.ErrCodeInternal,
				fmt.Sprintf("Pipeline halted at stage %s", stage.Name)).
				WithContext("stage", stage.Name)
		}
	}

	if bar != nil {
		bar.Finish()
	}

	return results, err
}

// selectStages picks the stages to run given the options, preserving order.
func (r *Runner) selectStages(opts Options) ([]Stage, error) {
	known := make(map[string]bool, len(r.stages))
	for _, stage := range r.stages {
		known[stage.Name] = true
	}
	for _, name := range append(append([]string{}, opts.Only...), opts.Skip...) {
		if !known[name] {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("Unknown stage %q", name)).
				WithContext("stages", r.StageNames())
		}
	}
	if opts.From != "" && !known[opts.From] {
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("Unknown stage %q", opts.From))
	}

	only := make(map[string]bool, len(opts.Only))
	for _, name := range opts.Only {
		only[name] = true
	}
	skip := make(map[string]bool, len(opts.Skip))
	for _, name := range opts.Skip {
		skip[name] = true
	}

	var selected []Stage
	started := opts.From == ""
	for _, stage := range r.stages {
		if stage.Name == opts.From {
			started = true
		}
		if !started || skip[stage.Name] {
			continue
		}
		if len(only) > 0 && !only[stage.Name] {
			continue
		}
		selected = append(selected, stage)
	}

	if len(selected) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "No stages selected")
	}
	return selected, nil
}
