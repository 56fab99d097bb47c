package view

import "fmt"

// Clipboard receives copied text.
type Clipboard interface {
	// Available reports whether the clipboard can be written to right now.
	Available() bool
	WriteText(text string) error
}

// CopyToClipboard copies the text currently shown by a bar or text node.
//
// Copying is best effort: a source showing a placeholder and a host without an
// available clipboard both make it a no-op. On success the source carries the
// BeingCopied flag until the scheduler clears it.
func (e *Engine) CopyToClipboard(sourceID string) error {
	n, ok := e.doc.Node(sourceID)
	if !ok {
		return notFound("copy source", sourceID)
	}
	src, ok := n.(copySource)
	if !ok {
		return fmt.Errorf("node %q (%T) has no copyable text", sourceID, n)
	}
	text, ok := src.copyText()
	if !ok || text == "" {
		e.logger.Debug("copy: source shows no content", "source", sourceID)
		return nil
	}

	cb := e.clipboard()
	if cb == nil {
		e.logger.Debug("copy: no clipboard available", "source", sourceID)
		return nil
	}

	src.setBeingCopied(true)
	if err := cb.WriteText(text); err != nil {
		e.logger.Warn("copy to clipboard failed", "source", sourceID, "error", err)
	}
	e.sched.After(e.copyFlag, func() { src.setBeingCopied(false) })
	return nil
}

func (e *Engine) clipboard() Clipboard {
	for _, cb := range e.clipboards {
		if cb != nil && cb.Available() {
			return cb
		}
	}
	return nil
}

// MemoryClipboard keeps the last written text. It is always available.
type MemoryClipboard struct {
	Text   string
	Writes int
}

// Available implements Clipboard.
func (c *MemoryClipboard) Available() bool { return true }

// WriteText implements Clipboard.
func (c *MemoryClipboard) WriteText(text string) error {
	c.Text = text
	c.Writes++
	return nil
}
