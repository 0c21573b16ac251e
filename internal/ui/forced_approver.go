package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// ForceCountdown is how long a forced rebuild waits before dropping the
// target database, giving the user a chance to press Ctrl+C.
const ForceCountdown = 5 * time.Second

// ForcedApprover implements the Approver interface for --force. It shows a
// warning and a countdown, then approves.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) xmlload.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval counts down and approves. Cancelling ctx during the
// countdown denies with ctx.Err().
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, dangerBanner(dbName))
	fmt.Fprintln(a.output)

	seconds := int(ForceCountdown.Seconds())
	for i := seconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with database rebuild...                              \n")
	return true, nil
}

var _ xmlload.Approver = (*ForcedApprover)(nil)
