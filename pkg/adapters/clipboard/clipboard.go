// Package clipboard hands rendered text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/aretw0/forge/pkg/core"
)

// ErrUnavailable is returned when no clipboard utility can be found.
var ErrUnavailable = errors.New("clipboard unavailable")

// Exporter implements core.Exporter.
//
// When Command is set (e.g. "wl-copy" or "pbcopy") the text is piped to it;
// otherwise the platform clipboard is used.
type Exporter struct {
	Command string

	write func(string) error
}

// New returns an exporter. An empty command selects the platform clipboard.
func New(command string) *Exporter {
	return &Exporter{Command: strings.TrimSpace(command)}
}

// Export copies text verbatim.
func (e *Exporter) Export(ctx context.Context, text string) error {
	if e.write != nil {
		return e.write(text)
	}
	if e.Command != "" {
		return e.runCommand(ctx, text)
	}
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (e *Exporter) runCommand(ctx context.Context, text string) error {
	parts := strings.Fields(e.Command)
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty copy command", ErrUnavailable)
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("copy command %q: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

var _ core.Exporter = (*Exporter)(nil)
