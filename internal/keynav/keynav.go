// Package keynav is the keyboard protocol of the two navigator panes.
//
// A Controller turns key events into state actions: moving the selection,
// expanding and collapsing, moving focus between panes, multi-selection and
// deletion. Every action that moves a pane's selected index also queues
// exactly one scroll request for the new index; actions that leave the
// index where it was queue none.
package keynav

import (
	"time"

	"github.com/treykane/tagnav/internal/logging"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/virtual"
)

var log = logging.New("keynav")

// RepeatWindow is the interval within which a repeated key is dropped.
const RepeatWindow = 16 * time.Millisecond

// Key is a navigation key after keymap translation.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyLeft
	KeyRight
	KeyTab
	KeyShiftTab
	KeyEnter
	KeyDelete
	KeyBackspace
	KeySelectAll
)

var keyNames = map[Key]string{
	KeyUp: "up", KeyDown: "down", KeyPageUp: "pageup", KeyPageDown: "pagedown",
	KeyHome: "home", KeyEnd: "end", KeyLeft: "left", KeyRight: "right",
	KeyTab: "tab", KeyShiftTab: "shift+tab", KeyEnter: "enter",
	KeyDelete: "delete", KeyBackspace: "backspace", KeySelectAll: "select-all",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "none"
}

// KeyEvent is one key press aimed at a pane.
type KeyEvent struct {
	Key Key
	// Shift extends the file selection for vertical movement keys.
	Shift bool
	// Pane is the pane the event targets. Events for the unfocused pane are
	// ignored.
	Pane state.Pane
	// Typing is set while a text input owns the keyboard.
	Typing bool
	// Modal is set while a dialog is open.
	Modal bool
}

// Lists gives the controller the current flattened rows.
type Lists interface {
	NavRows() []rows.NavRow
	FileRows() []rows.FileRow
}

// Geometry is the rendered window of a pane.
type Geometry interface {
	GetVirtualItems() []virtual.Item
	ViewportSize() int
}

// Sink performs the work the navigator delegates to its host.
type Sink interface {
	OpenFile(path string) error
	FocusEditor(path string) error
	DeleteFiles(paths []string) error
	DeleteFolder(path string) error
}

// Options configures a Controller.
type Options struct {
	Store         *state.Store
	Lists         Lists
	Folders       Geometry
	Files         Geometry
	Sink          Sink
	RTL           bool
	ConfirmDelete bool
	// Now is the clock used for repeat debouncing. Defaults to time.Now.
	Now func() time.Time
}

// Result reports what a key did.
type Result struct {
	// Handled is false when the event was not for the navigator.
	Handled bool
	// Dropped is set when the event was discarded as a key repeat.
	Dropped bool
	// Confirm is set when a deletion waits for confirmation.
	Confirm *DeleteRequest
	// Status is a message for the user, Err the failure behind it.
	Status string
	Err    error
}

// Controller implements the keyboard protocol.
type Controller struct {
	opts    Options
	lastKey Key
	lastAt  time.Time
	pending *DeleteRequest
}

// New returns a Controller.
func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts}
}

// SetRTL switches the meaning of Left and Right.
func (c *Controller) SetRTL(rtl bool) { c.opts.RTL = rtl }

// SetConfirmDelete toggles the confirmation gate for deletions.
func (c *Controller) SetConfirmDelete(confirm bool) { c.opts.ConfirmDelete = confirm }

// HandleKey runs one key event.
func (c *Controller) HandleKey(ev KeyEvent) Result {
	if ev.Key == KeyNone || ev.Typing || ev.Modal {
		return Result{}
	}
	store := c.opts.Store
	if store == nil || ev.Pane != store.UI().FocusedPane {
		return Result{}
	}

	now := c.opts.Now()
	if ev.Key == c.lastKey && !c.lastAt.IsZero() && now.Sub(c.lastAt) < RepeatWindow {
		return Result{Handled: true, Dropped: true}
	}
	c.lastKey, c.lastAt = ev.Key, now

	key := ev.Key
	if c.opts.RTL {
		switch key {
		case KeyLeft:
			key = KeyRight
		case KeyRight:
			key = KeyLeft
		}
	}

	if ev.Pane == state.PaneFolders {
		return c.handleFolders(key)
	}
	return c.handleFiles(key, ev.Shift)
}

func (c *Controller) handleFolders(key Key) Result {
	navRows := c.opts.Lists.NavRows()
	cur := rows.NewIndex(navRows).Lookup(c.opts.Store.Selection().NavKey())

	switch key {
	case KeyUp, KeyDown, KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
		target := verticalTarget(navRows, cur, key, pageSize(c.opts.Folders))
		c.selectNav(navRows, cur, target)
	case KeyRight:
		if c.setNavExpanded(navRows, cur, true) {
			break
		}
		c.focusFiles()
	case KeyLeft:
		if c.setNavExpanded(navRows, cur, false) {
			break
		}
		c.selectNav(navRows, cur, parentIndex(navRows, cur))
	case KeyTab:
		c.focusFiles()
	case KeyShiftTab:
	case KeyEnter:
		c.setNavExpanded(navRows, cur, true)
	case KeyDelete, KeyBackspace:
		return c.requestFolderDelete(navRows, cur)
	case KeySelectAll:
	default:
		return Result{}
	}
	return Result{Handled: true}
}

func (c *Controller) handleFiles(key Key, shift bool) Result {
	fileRows := c.opts.Lists.FileRows()
	cur := rows.NewIndex(fileRows).Lookup(c.opts.Store.Selection().FileKey())

	switch key {
	case KeyUp, KeyDown, KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
		target := verticalTarget(fileRows, cur, key, pageSize(c.opts.Files))
		c.selectFile(fileRows, cur, target, shift)
	case KeyLeft, KeyShiftTab:
		c.opts.Store.Dispatch(
			state.SetFocusedPane{Pane: state.PaneFolders},
			state.SetMobileView{View: state.ViewList},
		)
	case KeyRight, KeyTab:
		return c.delegate("Open editor", c.opts.Sink.FocusEditor)
	case KeyEnter:
		return c.delegate("Open", c.opts.Sink.OpenFile)
	case KeyDelete, KeyBackspace:
		return c.requestFileDelete(fileRows)
	case KeySelectAll:
		c.opts.Store.Dispatch(state.SelectAllFiles{Rows: fileRows})
	default:
		return Result{}
	}
	return Result{Handled: true}
}

func (c *Controller) delegate(verb string, fn func(string) error) Result {
	file := c.opts.Store.Selection().File
	if file == "" || fn == nil {
		return Result{Handled: true}
	}
	if err := fn(file); err != nil {
		log.WithError(err).WithField("path", file).Warn(verb + " failed")
		return Result{Handled: true, Status: verb + " failed", Err: err}
	}
	return Result{Handled: true}
}

// selectNav selects nav row target and queues its scroll. It does nothing
// when target is cur or not selectable.
func (c *Controller) selectNav(navRows []rows.NavRow, cur, target int) {
	if target < 0 || target == cur || target >= len(navRows) {
		return
	}
	action := navSelectAction(navRows[target])
	if action == nil {
		return
	}
	c.opts.Store.Dispatch(action, state.RequestScroll{
		Pane:  state.PaneFolders,
		Index: target,
		Key:   navRows[target].Key(),
	})
}

func navSelectAction(r rows.NavRow) state.Action {
	switch r := r.(type) {
	case rows.FolderRow:
		return state.SetSelectedFolder{Path: r.Path()}
	case rows.TagRow:
		return state.SetSelectedTag{Path: r.Path()}
	case rows.UntaggedRow:
		return state.SetSelectedTag{Path: untaggedPath}
	default:
		return nil
	}
}

// selectFile focuses file row target and queues its scroll. With extend,
// the multi-selection grows from the anchor to target.
func (c *Controller) selectFile(fileRows []rows.FileRow, cur, target int, extend bool) {
	if target < 0 || target == cur || target >= len(fileRows) {
		return
	}
	item, ok := fileRows[target].(rows.FileItemRow)
	if !ok {
		return
	}
	var action state.Action = state.SetSelectedFile{Path: item.File.Path}
	if extend {
		action = state.RangeSelect{Rows: fileRows, Target: target}
	}
	c.opts.Store.Dispatch(action, state.RequestScroll{
		Pane:  state.PaneFiles,
		Index: target,
		Key:   item.Key(),
	})
}

// setNavExpanded expands or collapses the row at cur. It reports false when
// the row cannot change that way, so Right and Left can fall through to
// focus or parent movement.
func (c *Controller) setNavExpanded(navRows []rows.NavRow, cur int, expand bool) bool {
	if cur < 0 || cur >= len(navRows) {
		return false
	}
	switch r := navRows[cur].(type) {
	case rows.FolderRow:
		if !r.HasChildren || r.Expanded == expand {
			return false
		}
		c.opts.Store.Dispatch(state.SetFolderExpanded{Path: r.Path(), Expanded: expand})
		return true
	case rows.TagRow:
		if !r.HasChildren() || r.Expanded == expand {
			return false
		}
		c.opts.Store.Dispatch(state.SetTagExpanded{Path: r.Path(), Expanded: expand})
		return true
	}
	return false
}

// focusFiles moves focus to the file list, selecting its first file when
// nothing there is selected yet.
func (c *Controller) focusFiles() {
	actions := []state.Action{
		state.SetFocusedPane{Pane: state.PaneFiles},
		state.SetMobileView{View: state.ViewFiles},
	}
	fileRows := c.opts.Lists.FileRows()
	if rows.NewIndex(fileRows).Lookup(c.opts.Store.Selection().FileKey()) < 0 {
		if first := rows.FirstSelectable(fileRows); first >= 0 {
			item := fileRows[first].(rows.FileItemRow)
			actions = append(actions,
				state.SetSelectedFile{Path: item.File.Path},
				state.RequestScroll{Pane: state.PaneFiles, Index: first, Key: item.Key()},
			)
		}
	}
	c.opts.Store.Dispatch(actions...)
}
