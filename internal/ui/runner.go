package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title           string            // Command title (e.g., "Card Init")
	Command         string            // Full command (e.g., "rcstore init")
	Params          map[string]string // Parameters to display in header
	StepNames       []string          // Names for each step
	Troubleshooting []string          // Tips shown when the operation fails
	Output          io.Writer         // Output writer (default: os.Stdout)
	Width           int               // 0 = terminal width
}

// Runner orchestrates the header, step list and result box of a command
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	out      io.Writer
	width    int
}

// NewRunner creates a runner for a multi-step command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		progress: NewProgress(config.StepNames),
		out:      config.Output,
		width:    width,
	}
}

// Operation is the work performed under a Runner. It reports progress
// through onStep and returns the details shown in the result box.
type Operation func(onStep StepCallback) (map[string]string, error)

// Run prints the header, executes op and prints the result.
// The returned error is op's error.
func (r *Runner) Run(op Operation) (map[string]string, error) {
	start := time.Now()

	_, _ = fmt.Fprintln(r.out, r.header.Render())
	_, _ = fmt.Fprintln(r.out)

	details, err := op(r.onStep)
	duration := time.Since(start)

	_, _ = fmt.Fprintln(r.out)
	if err != nil {
		result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
		_, _ = fmt.Fprintln(r.out, result.SetWidth(r.width).Render())
		return details, err
	}

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewSuccessResult(r.config.Title+" complete", details)
	_, _ = fmt.Fprintln(r.out, result.SetWidth(r.width).Render())
	return details, nil
}

// Steps returns the current step states
func (r *Runner) Steps() []Step {
	return r.progress.Steps
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}

	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	switch status {
	case StepComplete, StepFailed, StepSkipped:
		_, _ = fmt.Fprintln(r.out, line)
	case StepRunning:
		// Overwritten when the step finishes
		_, _ = fmt.Fprint(r.out, line+"\r")
	}
}
