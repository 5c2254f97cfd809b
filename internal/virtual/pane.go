package virtual

// Pane is a ScrollElement for a fixed-height region of the terminal.
type Pane struct {
	Height int
	Offset int
}

// ViewportSize returns the pane height in lines.
func (p *Pane) ViewportSize() int { return p.Height }

// ScrollOffset returns the first visible line.
func (p *Pane) ScrollOffset() int { return p.Offset }

// SetScrollOffset moves the first visible line.
func (p *Pane) SetScrollOffset(offset int) { p.Offset = max(offset, 0) }
