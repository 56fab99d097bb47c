package explore

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/leapstack-labs/datareport/internal/view"
)

// SystemClipboard writes to the desktop clipboard.
type SystemClipboard struct{}

// Available implements view.Clipboard.
func (SystemClipboard) Available() bool { return !clipboard.Unsupported }

// WriteText implements view.Clipboard.
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// CommandClipboard pipes text into an external command such as pbcopy.
type CommandClipboard struct {
	Name string
	Args []string

	lookPath func(string) (string, error)
}

// Available implements view.Clipboard. The command must be on PATH.
func (c CommandClipboard) Available() bool {
	look := c.lookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(c.Name)
	return err == nil
}

// WriteText implements view.Clipboard.
func (c CommandClipboard) WriteText(text string) error {
	cmd := exec.Command(c.Name, c.Args...) //nolint:gosec // G204: command comes from a fixed list
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.Name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// DefaultClipboards returns the system clipboard followed by command fallbacks.
func DefaultClipboards() []view.Clipboard {
	return []view.Clipboard{
		SystemClipboard{},
		CommandClipboard{Name: "pbcopy"},
		CommandClipboard{Name: "xclip", Args: []string{"-selection", "clipboard"}},
		CommandClipboard{Name: "wl-copy"},
	}
}
