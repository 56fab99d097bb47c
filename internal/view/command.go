package view

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Command is a user action. The set of commands is closed.
type Command interface {
	// Action returns the wire name of the command.
	Action() string
	apply(e *Engine) error
}

// Action names, as used by hosts that receive commands over the wire.
const (
	ActionToggleColumn     = "toggle-column"
	ActionSelectAllColumns = "select-all-columns"
	ActionClearColumns     = "clear-columns"
	ActionActivateCell     = "activate-cell"
	ActionChangeMode       = "change-mode"
	ActionApplyFilter      = "apply-filter"
	ActionShowTab          = "show-tab"
	ActionCopy             = "copy"
)

// ErrUnknownAction is returned by DecodeCommand for an unrecognized action name.
var ErrUnknownAction = errors.New("unknown action")

// ToggleColumn sets the checked state of a column checkbox.
type ToggleColumn struct {
	CheckboxID string
	Checked    bool
}

// SelectAllColumns checks every column the active filter keeps.
type SelectAllColumns struct{ ReportID string }

// ClearColumns unchecks every column.
type ClearColumns struct{ ReportID string }

// ActivateCell selects a table cell.
type ActivateCell struct{ CellID string }

// ChangeMode sets a mode selector.
type ChangeMode struct {
	SelectorID string
	Mode       Mode
}

// ApplyFilter applies a named column filter.
type ApplyFilter struct {
	ControlID string
	Filter    string
}

// ShowTab switches to a tab.
type ShowTab struct{ ButtonID string }

// CopyToClipboard copies the text shown by a bar or text node.
type CopyToClipboard struct{ SourceID string }

func (ToggleColumn) Action() string     { return ActionToggleColumn }
func (SelectAllColumns) Action() string { return ActionSelectAllColumns }
func (ClearColumns) Action() string     { return ActionClearColumns }
func (ActivateCell) Action() string     { return ActionActivateCell }
func (ChangeMode) Action() string       { return ActionChangeMode }
func (ApplyFilter) Action() string      { return ActionApplyFilter }
func (ShowTab) Action() string          { return ActionShowTab }
func (CopyToClipboard) Action() string  { return ActionCopy }

func (c ToggleColumn) apply(e *Engine) error     { return e.SetColumnChecked(c.CheckboxID, c.Checked) }
func (c SelectAllColumns) apply(e *Engine) error { return e.SelectAllColumns(c.ReportID) }
func (c ClearColumns) apply(e *Engine) error     { return e.ClearColumns(c.ReportID) }
func (c ActivateCell) apply(e *Engine) error     { return e.ActivateCell(c.CellID) }
func (c ChangeMode) apply(e *Engine) error       { return e.ChangeMode(c.SelectorID, c.Mode) }
func (c ApplyFilter) apply(e *Engine) error      { return e.ApplyColumnFilter(c.ControlID, c.Filter) }
func (c ShowTab) apply(e *Engine) error          { return e.ShowTab(c.ButtonID) }
func (c CopyToClipboard) apply(e *Engine) error  { return e.CopyToClipboard(c.SourceID) }

// Dispatch routes a command to its handler. The handler runs to completion before Dispatch returns.
func (e *Engine) Dispatch(cmd Command) error {
	if cmd == nil {
		return errors.New("nil command")
	}
	e.logger.Debug("dispatch", "action", cmd.Action(), "command", fmt.Sprintf("%+v", cmd))
	if err := cmd.apply(e); err != nil {
		return fmt.Errorf("%s: %w", cmd.Action(), err)
	}
	return nil
}

// DecodeCommand builds a command from an action name and its parameters.
//
// Parameters are: id (the target node) for every action, checked for toggle-column,
// mode for change-mode and filter for apply-filter.
func DecodeCommand(action string, params url.Values) (Command, error) {
	id := params.Get("id")
	if id == "" {
		return nil, fmt.Errorf("%s: missing id parameter", action)
	}
	switch action {
	case ActionToggleColumn:
		checked, err := strconv.ParseBool(params.Get("checked"))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid checked parameter: %w", action, err)
		}
		return ToggleColumn{CheckboxID: id, Checked: checked}, nil
	case ActionSelectAllColumns:
		return SelectAllColumns{ReportID: id}, nil
	case ActionClearColumns:
		return ClearColumns{ReportID: id}, nil
	case ActionActivateCell:
		return ActivateCell{CellID: id}, nil
	case ActionChangeMode:
		mode := params.Get("mode")
		if mode == "" {
			return nil, fmt.Errorf("%s: missing mode parameter", action)
		}
		return ChangeMode{SelectorID: id, Mode: Mode(mode)}, nil
	case ActionApplyFilter:
		return ApplyFilter{ControlID: id, Filter: params.Get("filter")}, nil
	case ActionShowTab:
		return ShowTab{ButtonID: id}, nil
	case ActionCopy:
		return CopyToClipboard{SourceID: id}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}
