package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/keynav"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/scrollsync"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/vault"
)

// Options configures New.
type Options struct {
	Config config.Config
	// ConfigPath is where sort and pin changes are saved. Empty disables
	// saving.
	ConfigPath string
	// Watch starts an fsnotify watcher on the vault.
	Watch bool
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// frameMsg advances smooth scroll animations.
type frameMsg struct{}

// Model holds the Bubble Tea state for the entire UI.
type Model struct {
	// Configuration
	cfg         config.Config
	cfgPath     string
	settings    config.Settings
	settingsRev uint64
	notesDir    string

	// Vault and change notifications
	vault         *vault.FS
	watcher       *vault.Watcher
	coalescer     *vault.Coalescer
	pendingEvents []vault.Event
	vaultSeq      int

	// Navigator state
	store        *state.Store
	nav          *keynav.Controller
	sync         *scrollsync.Synchronizer
	expansionRev uint64
	stateDirty   bool

	// Derived rows
	tags      *tagtree.Tree
	navRows   []rows.NavRow
	navIndex  rows.Index
	fileRows  []rows.FileRow
	fileIndex rows.Index
	tagMemo   rows.Memo[tagsKey, *tagtree.Tree]
	navMemo   rows.Memo[navKey, []rows.NavRow]
	fileMemo  rows.Memo[filesKey, []rows.FileRow]

	// List panes
	folders *listPane
	files   *listPane

	// Preview lines of file rows, loaded in the background
	previews      map[string]string
	previewTokens map[string]uint64
	previewSeq    uint64

	// Reader
	reader        viewport.Model
	currentFile   string
	readerFocused bool
	rendering     bool
	renderSeq     int
	renderCache   map[string]renderCacheEntry

	// File list filter
	filter    textinput.Model
	filtering bool
	query     string

	// Help and keybindings
	help         help.Model
	showHelp     bool
	keyForAction map[string][]string
	keyToAction  map[string]string
	keys         keyMap

	// Delete confirmation
	confirm *keynav.DeleteRequest

	// Layout sizing
	width  int
	height int
	layout LayoutDimensions

	status        string
	statusIsError bool
	queued        []tea.Cmd
	animating     bool
	now           func() time.Time
}

// New opens the vault, restores the saved view state and wires the
// navigator.
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	v, err := vault.Open(cfg.NotesDir)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	snap, err := loadAppState(cfg.NotesDir)
	if err != nil {
		appLog.WithError(err).WithField("notes_dir", cfg.NotesDir).Warn("load app state")
	}

	reader := viewport.New(0, 0)
	reader.SetContent(mutedStyle.Render("Select a note to read it"))

	filter := textinput.New()
	filter.Placeholder = "Filter notes"
	filter.Prompt = "/ "
	filter.CharLimit = FilterCharLimit

	m := &Model{
		cfg:           cfg,
		cfgPath:       opts.ConfigPath,
		settings:      cfg.Settings,
		notesDir:      cfg.NotesDir,
		vault:         v,
		coalescer:     vault.NewCoalescer(cfg.ChangeDebounce),
		folders:       newListPane(cfg.Overscan),
		files:         newListPane(cfg.Overscan),
		previews:      map[string]string{},
		previewTokens: map[string]uint64{},
		reader:        reader,
		renderCache:   map[string]renderCacheEntry{},
		filter:        filter,
		help:          help.New(),
		status:        "Ready",
		now:           now,
	}
	m.loadKeybindings(cfg)

	if opts.Watch {
		w, err := vault.NewWatcher(cfg.NotesDir)
		if err != nil {
			m.setStatusError("File watching unavailable", err)
		} else {
			m.watcher = w
		}
	}

	m.store = state.NewStore(snap)
	m.store.Subscribe(m.onStateChange)
	m.nav = keynav.New(keynav.Options{
		Store:         m.store,
		Lists:         m,
		Folders:       m.folders.virt,
		Files:         m.files.virt,
		Sink:          vaultSink{m: m},
		RTL:           m.settings.RTL,
		ConfirmDelete: m.settings.ConfirmDelete,
		Now:           now,
	})
	m.sync = scrollsync.New(m.store, m.scrollPolicy(m.settings.Layout == config.LayoutTouch),
		scrollsync.Pane{
			Scroller:   m.folders.virt,
			Lookup:     func(key string) int { return m.navIndex.Lookup(key) },
			Generation: func() uint64 { return m.folders.gen },
		},
		scrollsync.Pane{
			Scroller:   m.files.virt,
			Lookup:     func(key string) int { return m.fileIndex.Lookup(key) },
			Generation: func() uint64 { return m.files.gen },
		},
	)

	m.restoreSelection()
	m.stateDirty = false
	return m, nil
}

// restoreSelection makes the saved selection visible, or selects the first
// navigation row on a first run.
func (m *Model) restoreSelection() {
	sel := m.store.Selection()
	if sel.Type != state.SelectionNone {
		m.store.Dispatch(state.ExpandAncestors{Tag: sel.Type == state.SelectionTag, Path: sel.NavPath()})
	}
	m.refreshRows()
	if m.navIndex.Lookup(sel.NavKey()) < 0 {
		if first := rows.FirstSelectable(m.navRows); first >= 0 {
			if action := selectNavRow(m.navRows[first]); action != nil {
				m.store.Dispatch(action)
				m.refreshRows()
			}
		}
	}
	m.revealSelection()
}

// revealSelection queues scrolls that bring both selected rows into view.
func (m *Model) revealSelection() {
	m.refreshRows()
	sel := m.store.Selection()
	var actions []state.Action
	if key := sel.NavKey(); key != "" {
		if i := m.navIndex.Lookup(key); i >= 0 {
			actions = append(actions, state.RequestScroll{Pane: state.PaneFolders, Index: i, Key: key})
		}
	}
	if key := sel.FileKey(); key != "" {
		if i := m.fileIndex.Lookup(key); i >= 0 {
			actions = append(actions, state.RequestScroll{Pane: state.PaneFiles, Index: i, Key: key})
		}
	}
	if len(actions) > 0 {
		m.store.Dispatch(actions...)
	}
}

// scrollPolicy returns the policy of the compact or the wide layout.
func (m *Model) scrollPolicy(compact bool) scrollsync.Policy {
	if compact {
		return scrollsync.NewTouchScrollPolicy(m.store.Expansion().Folders.Len())
	}
	return scrollsync.NewDesktopScrollPolicy()
}

// onStateChange runs after every dispatch.
func (m *Model) onStateChange(c state.Change) {
	if c.ExpansionChanged() {
		m.expansionRev++
		m.stateDirty = true
	}
	if c.SelectionChanged() || c.Prev.UI.FocusedPane != c.Next.UI.FocusedPane {
		m.stateDirty = true
	}
	if c.Prev.Selection.NavKey() != c.Next.Selection.NavKey() {
		// A different folder or tag starts at the top of its list.
		m.files.el.Offset = 0
	}
}

// Init starts listening for vault changes.
func (m *Model) Init() tea.Cmd {
	return m.waitForVaultEvent()
}

// Update is the Bubble Tea update loop: handle events and emit commands.
// Every message ends with afterUpdate, which brings rows, scrolling and the
// reader in line with the new state before the frame is drawn.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.route(msg)
	return model, tea.Batch(cmd, m.afterUpdate())
}

func (m *Model) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case vaultEventMsg:
		return m.handleVaultEvent(msg)
	case vaultFlushMsg:
		return m.handleVaultFlush(msg)
	case vaultErrMsg:
		m.setStatusError("File watcher error", msg.err)
		return m, m.waitForVaultEvent()
	case vaultClosedMsg:
		return m, nil
	case previewMsg:
		m.handlePreview(msg)
		return m, nil
	case renderRequestMsg:
		return m, m.handleRenderRequest(msg)
	case renderResultMsg:
		m.handleRenderResult(msg)
		return m, nil
	case scrollsync.RetryMsg:
		return m, m.sync.HandleRetry(msg)
	case frameMsg:
		return m, m.handleFrame()
	}
	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	if m.applyLayout(m.calculateLayout()) {
		m.sync.SetPolicy(m.scrollPolicy(m.layout.Compact))
		m.revealSelection()
	}
	return m, m.refreshReader()
}

// afterUpdate derives rows, applies scrolls, measures what became visible
// and starts the background work the new window needs.
func (m *Model) afterUpdate() tea.Cmd {
	m.refreshRows()
	m.measureVisible()
	cmds := []tea.Cmd{m.sync.Reconcile()}
	m.measureVisible()
	cmds = append(cmds, m.loadVisiblePreviews(), m.followSelection())
	cmds = append(cmds, m.queued...)
	m.queued = nil

	if m.stateDirty {
		m.saveAppState()
		m.stateDirty = false
	}
	if !m.animating && (m.folders.virt.Animating() || m.files.virt.Animating()) {
		m.animating = true
		cmds = append(cmds, frameTick())
	}
	return tea.Batch(cmds...)
}

// queue schedules cmd to be returned by the current update.
func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) handleFrame() tea.Cmd {
	folders := m.folders.virt.Animate()
	files := m.files.virt.Animate()
	if folders || files {
		return frameTick()
	}
	m.animating = false
	return nil
}

// followSelection keeps the reader on the focused note. The compact layout
// only renders notes the user opened.
func (m *Model) followSelection() tea.Cmd {
	if m.layout.Compact && !m.readerFocused {
		return nil
	}
	file := m.store.Selection().File
	if file == "" {
		if m.currentFile != "" {
			m.clearReader()
		}
		return nil
	}
	if !m.vault.Has(vault.FileRef{Path: file}) {
		return nil
	}
	return m.showInReader(file)
}

func (m *Model) clearReader() {
	m.currentFile = ""
	m.rendering = false
	m.renderSeq++
	m.reader.SetContent(mutedStyle.Render("Select a note to read it"))
	m.reader.GotoTop()
}

// shutdown persists state and stops the watcher.
func (m *Model) shutdown() {
	m.saveAppState()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			appLog.WithError(err).Warn("close vault watcher")
		}
	}
}

// selectNavRow returns the action selecting a navigation row, or nil for
// rows that cannot be selected.
func selectNavRow(r rows.NavRow) state.Action {
	switch r := r.(type) {
	case rows.FolderRow:
		return state.SetSelectedFolder{Path: r.Path()}
	case rows.TagRow:
		return state.SetSelectedTag{Path: r.Path()}
	case rows.UntaggedRow:
		return state.SetSelectedTag{Path: tagtree.UntaggedPath}
	}
	return nil
}
