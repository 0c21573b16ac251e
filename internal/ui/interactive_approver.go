package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// InteractiveApprover asks the user to type the database name before a
// rebuild drops it.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover reading stdin and
// writing to stderr.
func NewInteractiveApprover(verbose bool) xmlload.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval approves only when the typed line equals dbName.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s\n", warningStyle.Render(fmt.Sprintf("WARNING: You are about to DROP and RECREATE the database '%s'", dbName)))
	fmt.Fprintln(a.output, "This will permanently delete all data in this database!")
	fmt.Fprintf(a.output, "\nTo confirm, type the database name '%s' and press Enter: ", dbName)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// The reader goroutine outlives a cancelled prompt until stdin yields;
	// the process exits soon after in that case.
	go func() {
		line, err := bufio.NewReader(a.input).ReadString('\n')
		if err != nil && line == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == dbName {
			fmt.Fprintln(a.output, "✓ Confirmed. Proceeding with database rebuild...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match database name '%s'. Operation cancelled.\n", input, dbName)
		return false, nil
	}
}

var _ xmlload.Approver = (*InteractiveApprover)(nil)
