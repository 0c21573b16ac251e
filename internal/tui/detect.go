package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for xmlload.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnvVar forces non-interactive mode when set to "1".
const NonInteractiveEnvVar = "XMLLOAD_NON_INTERACTIVE"

// DetectMode determines whether xmlload should run in interactive or non-interactive mode.
//
// Returns ModeNonInteractive if:
//   - XMLLOAD_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stderr is not a terminal
//
// Returns ModeInteractive otherwise. Progress is drawn on stderr so stdout
// stays clean for --json.
func DetectMode() Mode {
	if os.Getenv(NonInteractiveEnvVar) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
