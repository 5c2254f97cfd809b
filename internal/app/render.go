// render.go implements debounced, cached markdown rendering for the reader
// pane.
//
// Moving through the file list selects a new note on every key press, so
// requestRender bumps a sequence number and waits RenderDebounce before
// rendering; a request whose sequence is no longer current is dropped.
// Finished renders are cached per note, keyed by modification time and width
// bucket, so returning to a note is instant.
//
// Glamour renderers are cached per width bucket in a small LRU because
// building one parses the style sheet. The style comes from
// TAGNAV_GLAMOUR_STYLE or GLAMOUR_STYLE and defaults to "dark".
package app

import (
	"container/list"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/sirupsen/logrus"
)

// renderCacheEntry stores a completed render with the inputs that produced it.
type renderCacheEntry struct {
	mtime   time.Time
	width   int
	content string
}

// renderRequestMsg fires when the debounce for a render elapses.
type renderRequestMsg struct {
	path  string
	width int
	seq   int
}

// renderResultMsg carries a finished render back to Update.
type renderResultMsg struct {
	path    string
	width   int
	seq     int
	content string
	mtime   time.Time
	err     error
}

var (
	maxRendererCacheEntries = 8

	rendererCacheMu    sync.Mutex
	rendererCache      = map[int]*glamour.TermRenderer{}
	rendererCacheOrder = list.New()
	rendererCacheNodes = map[int]*list.Element{}
)

// showInReader makes path the note displayed in the reader.
func (m *Model) showInReader(path string) tea.Cmd {
	if path == "" || path == m.currentFile {
		return nil
	}
	m.currentFile = path
	m.reader.GotoTop()
	return m.requestRender(path)
}

// refreshReader re-renders the current note, for example after a resize.
func (m *Model) refreshReader() tea.Cmd {
	if m.currentFile == "" {
		return nil
	}
	return m.requestRender(m.currentFile)
}

// requestRender shows a cached render immediately or schedules a new one.
func (m *Model) requestRender(path string) tea.Cmd {
	if path == "" || m.vault == nil {
		return nil
	}
	width := renderWidthBucket(m.reader.Width)
	if info, err := os.Stat(m.vault.Abs(path)); err == nil {
		if entry, ok := m.renderCache[path]; ok && entry.width == width && entry.mtime.Equal(info.ModTime()) {
			m.reader.SetContent(entry.content)
			m.rendering = false
			return nil
		}
	}
	m.rendering = true
	m.reader.SetContent(mutedStyle.Render("Rendering…"))
	m.renderSeq++
	seq := m.renderSeq
	return tea.Tick(RenderDebounce, func(time.Time) tea.Msg {
		return renderRequestMsg{path: path, width: width, seq: seq}
	})
}

func (m *Model) handleRenderRequest(msg renderRequestMsg) tea.Cmd {
	if msg.seq != m.renderSeq || msg.path != m.currentFile {
		return nil
	}
	return renderMarkdownCmd(m.vault.Abs(msg.path), msg.path, msg.width, msg.seq)
}

func (m *Model) handleRenderResult(msg renderResultMsg) {
	if msg.err != nil {
		if msg.seq == m.renderSeq && msg.path == m.currentFile {
			m.reader.SetContent("Error reading note")
			m.rendering = false
			m.setStatusError("Error reading note", msg.err, logrus.Fields{"path": msg.path})
		}
		return
	}
	if entry, ok := m.renderCache[msg.path]; !ok || !entry.mtime.After(msg.mtime) {
		m.renderCache[msg.path] = renderCacheEntry{mtime: msg.mtime, width: msg.width, content: msg.content}
	}
	if msg.seq != m.renderSeq || msg.path != m.currentFile {
		return
	}
	if msg.width == renderWidthBucket(m.reader.Width) {
		m.reader.SetContent(msg.content)
		m.rendering = false
	}
}

// renderMarkdownCmd reads and renders a note on a background goroutine.
func renderMarkdownCmd(abs, rel string, width, seq int) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(abs)
		if err != nil {
			return renderResultMsg{path: rel, width: width, seq: seq, err: err}
		}
		content, err := os.ReadFile(abs)
		if err != nil {
			return renderResultMsg{path: rel, width: width, seq: seq, err: err}
		}
		return renderResultMsg{
			path:    rel,
			width:   width,
			seq:     seq,
			content: renderMarkdown(string(content), width),
			mtime:   info.ModTime(),
		}
	}
}

// renderMarkdown converts markdown to ANSI output. On renderer failure the
// raw markdown is returned so the note stays readable.
func renderMarkdown(content string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := getRenderer(width)
	if err != nil {
		appLog.WithError(err).WithField("width", width).Error("create markdown renderer")
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		appLog.WithError(err).WithField("width", width).Error("render markdown content")
		return content
	}
	return out
}

// getRenderer returns a cached Glamour renderer for width.
func getRenderer(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	if renderer, ok := rendererCache[width]; ok {
		if node, ok := rendererCacheNodes[width]; ok {
			rendererCacheOrder.MoveToBack(node)
		}
		return renderer, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamourStyleOption(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache[width] = renderer
	rendererCacheNodes[width] = rendererCacheOrder.PushBack(width)
	evictOldestRendererIfNeeded()
	return renderer, nil
}

func evictOldestRendererIfNeeded() {
	for len(rendererCache) > maxRendererCacheEntries && rendererCacheOrder.Len() > 0 {
		oldest := rendererCacheOrder.Front()
		width, _ := oldest.Value.(int)
		rendererCacheOrder.Remove(oldest)
		delete(rendererCache, width)
		delete(rendererCacheNodes, width)
	}
}

func resetRendererCacheForTests() {
	rendererCacheMu.Lock()
	defer rendererCacheMu.Unlock()
	rendererCache = map[int]*glamour.TermRenderer{}
	rendererCacheOrder = list.New()
	rendererCacheNodes = map[int]*list.Element{}
}

// glamourStyleOption resolves the style from TAGNAV_GLAMOUR_STYLE, then
// GLAMOUR_STYLE, then "dark". "auto" queries the terminal background.
func glamourStyleOption() glamour.TermRendererOption {
	style := strings.ToLower(strings.TrimSpace(os.Getenv("TAGNAV_GLAMOUR_STYLE")))
	if style == "" {
		style = strings.ToLower(strings.TrimSpace(os.Getenv("GLAMOUR_STYLE")))
	}
	switch style {
	case "auto":
		return glamour.WithAutoStyle()
	case "dark", "light", "notty":
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStandardStyle("dark")
	}
}
