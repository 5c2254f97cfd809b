package keynav

import (
	"fmt"
	"path"

	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
)

// DeleteRequest is a deletion waiting to run, possibly for confirmation.
// The fallback is the row selected once the deletion succeeds.
type DeleteRequest struct {
	Pane          state.Pane
	Paths         []string
	FallbackPath  string
	FallbackKey   string
	FallbackIndex int
}

// Prompt is the confirmation question for the request.
func (r DeleteRequest) Prompt() string {
	if r.Pane == state.PaneFolders && len(r.Paths) == 1 {
		return fmt.Sprintf("Delete folder %q and everything in it?", path.Base(r.Paths[0]))
	}
	if len(r.Paths) == 1 {
		return fmt.Sprintf("Delete %q?", path.Base(r.Paths[0]))
	}
	return fmt.Sprintf("Delete %d notes?", len(r.Paths))
}

// PendingDelete returns the deletion awaiting confirmation, if any.
func (c *Controller) PendingDelete() *DeleteRequest { return c.pending }

// ConfirmPendingDelete runs the pending deletion.
func (c *Controller) ConfirmPendingDelete() Result {
	req := c.pending
	c.pending = nil
	if req == nil {
		return Result{}
	}
	return c.execute(*req)
}

// CancelPendingDelete drops the pending deletion.
func (c *Controller) CancelPendingDelete() {
	c.pending = nil
}

func (c *Controller) requestFolderDelete(navRows []rows.NavRow, cur int) Result {
	if cur < 0 || cur >= len(navRows) {
		return Result{Handled: true}
	}
	row, ok := navRows[cur].(rows.FolderRow)
	if !ok || row.Folder.IsRoot() {
		return Result{Handled: true}
	}
	req := DeleteRequest{Pane: state.PaneFolders, Paths: []string{row.Path()}, FallbackIndex: -1}
	if j, idx := folderFallback(navRows, cur); j >= 0 {
		fallback := navRows[j].(rows.FolderRow)
		req.FallbackPath = fallback.Path()
		req.FallbackKey = fallback.Key()
		req.FallbackIndex = idx
	}
	return c.submit(req)
}

// folderFallback finds the row to select after deleting the folder at cur:
// the next sibling, else the previous sibling, else the parent. It returns
// the row's current index and its predicted index once the deleted subtree
// is gone.
func folderFallback(navRows []rows.NavRow, cur int) (int, int) {
	level := navRows[cur].Level()
	for j := cur + 1; j < len(navRows); j++ {
		if _, ok := navRows[j].(rows.FolderRow); !ok || navRows[j].Level() < level {
			break
		}
		if navRows[j].Level() == level {
			return j, cur
		}
	}
	for j := cur - 1; j >= 0; j-- {
		if _, ok := navRows[j].(rows.FolderRow); !ok {
			break
		}
		if navRows[j].Level() <= level {
			return j, j
		}
	}
	return -1, -1
}

func (c *Controller) requestFileDelete(fileRows []rows.FileRow) Result {
	selection := c.opts.Store.Selection()
	paths := selection.SelectedFiles()
	if len(paths) == 0 {
		return Result{Handled: true}
	}
	req := DeleteRequest{Pane: state.PaneFiles, Paths: paths, FallbackIndex: -1}
	if j, idx := fileFallback(fileRows, state.NewPathSet(paths...)); j >= 0 {
		item := fileRows[j].(rows.FileItemRow)
		req.FallbackPath = item.File.Path
		req.FallbackKey = item.Key()
		req.FallbackIndex = idx
	}
	return c.submit(req)
}

// fileFallback picks the first unselected file after the last selected
// one, else the last unselected file before the first selected one.
func fileFallback(fileRows []rows.FileRow, selected state.PathSet) (int, int) {
	firstSel, lastSel := -1, -1
	for i, r := range fileRows {
		if item, ok := r.(rows.FileItemRow); ok && selected.Has(item.File.Path) {
			if firstSel < 0 {
				firstSel = i
			}
			lastSel = i
		}
	}
	if firstSel < 0 {
		return -1, -1
	}
	removedBefore := func(j int) int {
		n := 0
		for _, r := range fileRows[:j] {
			if item, ok := r.(rows.FileItemRow); ok && selected.Has(item.File.Path) {
				n++
			}
		}
		return n
	}
	for j := lastSel + 1; j < len(fileRows); j++ {
		if item, ok := fileRows[j].(rows.FileItemRow); ok && !selected.Has(item.File.Path) {
			return j, j - removedBefore(j)
		}
	}
	for j := firstSel - 1; j >= 0; j-- {
		if item, ok := fileRows[j].(rows.FileItemRow); ok && !selected.Has(item.File.Path) {
			return j, j - removedBefore(j)
		}
	}
	return -1, -1
}

func (c *Controller) submit(req DeleteRequest) Result {
	if c.opts.ConfirmDelete {
		c.pending = &req
		return Result{Handled: true, Confirm: c.pending}
	}
	return c.execute(req)
}

// execute runs the deletion through the sink. State changes only after the
// sink reports success.
func (c *Controller) execute(req DeleteRequest) Result {
	if c.opts.Sink == nil {
		return Result{Handled: true}
	}
	var err error
	if req.Pane == state.PaneFolders {
		err = c.opts.Sink.DeleteFolder(req.Paths[0])
	} else {
		err = c.opts.Sink.DeleteFiles(req.Paths)
	}
	if err != nil {
		log.WithError(err).WithField("paths", req.Paths).Warn("delete failed")
		return Result{Handled: true, Status: "Delete failed", Err: err}
	}

	actions := []state.Action{state.RemovePaths{Paths: req.Paths}}
	if req.FallbackKey != "" {
		if req.Pane == state.PaneFolders {
			actions = append(actions, state.SetSelectedFolder{Path: req.FallbackPath})
		} else {
			actions = append(actions, state.SetSelectedFile{Path: req.FallbackPath})
		}
		actions = append(actions, state.RequestScroll{Pane: req.Pane, Index: req.FallbackIndex, Key: req.FallbackKey})
	}
	c.opts.Store.Dispatch(actions...)

	status := fmt.Sprintf("Deleted %d notes", len(req.Paths))
	switch {
	case req.Pane == state.PaneFolders:
		status = "Deleted folder " + path.Base(req.Paths[0])
	case len(req.Paths) == 1:
		status = "Deleted " + path.Base(req.Paths[0])
	}
	return Result{Handled: true, Status: status}
}
