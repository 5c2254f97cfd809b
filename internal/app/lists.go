package app

import (
	"time"

	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/virtual"
)

// listPane couples a virtualizer with the pane geometry it scrolls. gen
// changes whenever the pane's rows are rebuilt.
type listPane struct {
	virt *virtual.Virtualizer
	el   *virtual.Pane
	gen  uint64
}

func newListPane(overscan int) *listPane {
	el := &virtual.Pane{}
	v := virtual.New(virtual.Options{Overscan: overscan})
	v.SetScrollElement(el)
	return &listPane{virt: v, el: el}
}

// setRows points the virtualizer at list. Measurements of rows whose keys
// survive the rebuild are kept.
func setRows[R rows.Row](p *listPane, list []R, estimate func(R) int, overscan int) {
	p.virt.SetOptions(virtual.Options{
		Count:        len(list),
		EstimateSize: func(i int) int { return estimate(list[i]) },
		Overscan:     overscan,
		GetKey:       func(i int) string { return list[i].Key() },
	})
}

type tagsKey struct {
	vaultGen    uint64
	settingsRev uint64
}

type navKey struct {
	vaultGen     uint64
	tags         *tagtree.Tree
	expansionRev uint64
	settingsRev  uint64
}

type filesKey struct {
	vaultGen    uint64
	tags        *tagtree.Tree
	settingsRev uint64
	kind        rows.NavKind
	path        string
	query       string
	day         string
}

// refreshRows re-derives the tag tree and both row lists. Each derivation
// only runs when its inputs changed.
func (m *Model) refreshRows() {
	vaultGen := m.vault.Generation()
	m.tags = m.tagMemo.Get(tagsKey{vaultGen: vaultGen, settingsRev: m.settingsRev}, func() *tagtree.Tree {
		tree := tagtree.Build(m.vault.MarkdownFiles(), m.vault.FileTags, tagtree.Options{IncludeUntagged: m.settings.ShowUntagged})
		if len(m.settings.HiddenTags) > 0 {
			tree = tree.Filter(pattern.CompileAll(m.settings.HiddenTags))
		}
		return tree
	})

	snap := m.store.Snapshot()
	rebuiltNav := false
	m.navRows = m.navMemo.Get(navKey{
		vaultGen:     vaultGen,
		tags:         m.tags,
		expansionRev: m.expansionRev,
		settingsRev:  m.settingsRev,
	}, func() []rows.NavRow {
		rebuiltNav = true
		return rows.BuildNavigation(rows.NavInput{
			Root:            m.vault.RootFolder(),
			Tags:            m.tags,
			ExpandedFolders: snap.Expansion.Folders,
			ExpandedTags:    snap.Expansion.Tags,
			ExcludedFolders: pattern.CompileAll(m.settings.ExcludedFolders),
			ShowRootFolder:  m.settings.ShowRootFolder,
			ShowTags:        m.settings.ShowTags,
			ShowUntagged:    m.settings.ShowUntagged,
		})
	})
	if rebuiltNav {
		m.folders.gen++
		m.navIndex = rows.NewIndex(m.navRows)
		setRows(m.folders, m.navRows, func(rows.NavRow) int { return 1 }, m.settings.Overscan)
	}

	now := m.now()
	sel := snap.Selection
	rebuiltFiles := false
	m.fileRows = m.fileMemo.Get(filesKey{
		vaultGen:    vaultGen,
		tags:        m.tags,
		settingsRev: m.settingsRev,
		kind:        sel.NavKind(),
		path:        sel.NavPath(),
		query:       m.query,
		day:         now.Format(time.DateOnly),
	}, func() []rows.FileRow {
		rebuiltFiles = true
		return rows.BuildFileList(rows.FileListInput{
			Source:   m.vault,
			Root:     m.vault.RootFolder(),
			Tags:     m.tags,
			Settings: m.settings,
			Kind:     sel.NavKind(),
			Path:     sel.NavPath(),
			Query:    m.query,
			Now:      now,
		})
	})
	if rebuiltFiles {
		m.files.gen++
		m.fileIndex = rows.NewIndex(m.fileRows)
		setRows(m.files, m.fileRows, m.estimateFileRow, m.settings.Overscan)
	}
}

// invalidateRows forces the next refreshRows to rebuild everything.
func (m *Model) invalidateRows() {
	m.tagMemo.Reset()
	m.navMemo.Reset()
	m.fileMemo.Reset()
}

// NavRows returns the navigation rows. It is read by the keyboard controller.
func (m *Model) NavRows() []rows.NavRow { return m.navRows }

// FileRows returns the file list rows.
func (m *Model) FileRows() []rows.FileRow { return m.fileRows }

// estimateFileRow guesses a row's height before it is rendered: the title,
// the date line and a full preview.
func (m *Model) estimateFileRow(r rows.FileRow) int {
	if _, ok := r.(rows.FileItemRow); !ok {
		return 1
	}
	size := 1
	if m.settings.ShowDate {
		size++
	}
	if m.settings.ShowPreview {
		size += m.settings.PreviewRows
	}
	return size
}

// measureVisible renders the rows in the window and records their real
// heights. Measuring can move the window, so it repeats until nothing
// changes or a few passes have run.
func (m *Model) measureVisible() {
	const passes = 3
	for range passes {
		changed := false
		for _, it := range m.folders.virt.GetVirtualItems() {
			if it.Index >= len(m.navRows) {
				continue
			}
			if h := renderedHeight(m.renderNavRow(m.navRows[it.Index], m.layout.NavInner, false)); h != it.Size {
				m.folders.virt.Measure(it.Index, h)
				changed = true
			}
		}
		for _, it := range m.files.virt.GetVirtualItems() {
			if it.Index >= len(m.fileRows) {
				continue
			}
			if h := renderedHeight(m.renderFileRow(m.fileRows[it.Index], m.layout.FilesInner, false)); h != it.Size {
				m.files.virt.Measure(it.Index, h)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
