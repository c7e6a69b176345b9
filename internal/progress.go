package internal

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// UIManager renders step progress on stderr. It implements
// ProgressReporter with a spinner per running step and a one-line
// outcome when the step finishes. Quiet mode suppresses everything;
// verbose mode leaves the terminal to the structured logs.
type UIManager struct {
	verbose bool
	quiet   bool

	mu       sync.Mutex
	spinners map[string]*progressbar.ProgressBar
}

// NewUIManager creates the terminal progress reporter
func NewUIManager(verbose, quiet bool) *UIManager {
	return &UIManager{
		verbose:  verbose,
		quiet:    quiet,
		spinners: make(map[string]*progressbar.ProgressBar),
	}
}

func (ui *UIManager) silent() bool { return ui.quiet || ui.verbose }

// StepStarted starts a spinner for the step
func (ui *UIManager) StepStarted(name string) {
	if ui.silent() {
		return
	}
	ui.mu.Lock()
	defer ui.mu.Unlock()

	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	ui.spinners[name] = spinner
}

// StepFinished stops the step's spinner and prints the outcome
func (ui *UIManager) StepFinished(record ProcessingStepRecord) {
	if ui.silent() {
		return
	}
	ui.mu.Lock()
	defer ui.mu.Unlock()

	if spinner, ok := ui.spinners[record.Step]; ok {
		spinner.Finish()
		delete(ui.spinners, record.Step)
	}

	switch record.Status {
	case StepSuccess:
		detail := ""
		if record.Detail != "" {
			detail = " - " + record.Detail
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s)%s\n", record.Step, FormatDuration(record.Elapsed), detail)
	case StepFailed:
		fmt.Fprintf(os.Stderr, "✗ %s: %s\n", record.Step, record.Err)
	default:
		fmt.Fprintf(os.Stderr, "- %s: %s\n", record.Step, record.Status)
	}
}

// Printf prints a status message unless quiet
func (ui *UIManager) Printf(format string, args ...any) {
	if ui.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
