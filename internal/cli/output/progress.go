package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	barWidth = 30
	// counterStep is how often the byte counter redraws when the size is
	// unknown.
	counterStep = 256 << 10
)

// ProgressBar draws download progress on a terminal line. It is an
// io.Writer so it can sit in an io.MultiWriter next to the destination.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	total   int64
	current int64
	drawn   int64 // percent or byte mark of the last redraw, -1 before the first
}

// NewProgressBar creates a bar for total bytes. A total of zero or less
// shows a byte counter instead.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{w: w, title: title, total: total, drawn: -1}
}

// Write counts b as transferred.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += int64(len(b))
	if mark := p.mark(); mark != p.drawn {
		p.drawn = mark
		p.render()
	}
	return len(b), nil
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

// mark is the redraw granularity: whole percent, or counterStep bytes.
func (p *ProgressBar) mark() int64 {
	if p.total <= 0 {
		return p.current / counterStep
	}
	return min(p.current*100/p.total, 100)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}
	pct := min(p.current*100/p.total, 100)
	filled := int(pct) * barWidth / 100
	fmt.Fprintf(p.w, "\r%s [%s%s] %3d%% (%s/%s)",
		p.title,
		strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled),
		pct, FormatBytes(p.current), FormatBytes(p.total),
	)
}

// FormatBytes renders b with a binary unit, such as "1.5 MiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
