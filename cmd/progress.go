package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/logging"
)

const redrawInterval = 100 * time.Millisecond

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(12)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// formatBytes renders n in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// progressBar draws one bar on a terminal line, redrawing in place.
type progressBar struct {
	mu       sync.Mutex
	w        io.Writer
	bar      progress.Model
	label    string
	total    int64
	current  int64
	lastDraw time.Time
	active   bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) start(label string, current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label, p.current, p.total, p.active = label, current, total, true
	p.drawLocked(true)
}

func (p *progressBar) set(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.drawLocked(false)
}

func (p *progressBar) finish(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.current = p.total
		p.drawLocked(true)
		fmt.Fprintln(p.w)
		p.active = false
	}
	if msg != "" {
		fmt.Fprintln(p.w, doneStyle.Render(msg))
	}
}

func (p *progressBar) drawLocked(force bool) {
	now := time.Now()
	if !force && now.Sub(p.lastDraw) < redrawInterval {
		return
	}
	p.lastDraw = now

	percent := 0.0
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total)
	}
	fmt.Fprintf(p.w, "\r%s %s %s / %s",
		labelStyle.Render(p.label), p.bar.ViewAs(percent), formatBytes(p.current), formatBytes(p.total))
}

// installSink renders install events. Terminals get progress bars; other
// outputs get one log line per phase.
func installSink(w *os.File) core.InstallSink {
	if jsonOutput || !isTTY(w) {
		return logInstallEvent
	}

	bar := newProgressBar(w)
	return func(e core.InstallEvent) {
		switch e := e.(type) {
		case core.DownloadBegin:
			bar.start("Downloading", e.Current, e.Total)
		case core.DownloadProgress:
			bar.set(e.Current)
		case core.DownloadFinish:
			bar.finish("")
		case core.VerifyBegin:
			bar.start("Verifying", 0, e.Total)
		case core.VerifyProgress:
			bar.set(e.Current)
		case core.VerifyFinish:
			bar.finish("✔ Checksum verified")
		case core.ExtractBegin:
			fmt.Fprintln(w, labelStyle.Render("Extracting")+" ...")
		case core.ExtractCopy:
			if !bar.active {
				bar.start("Copying", e.Copied, e.Total)
			}
			bar.set(e.Copied)
		case core.ExtractWarning:
			bar.finish("")
			fmt.Fprintln(w, warnStyle.Render("⚠ "+e.Message))
		case core.ExtractCleanUp:
			bar.finish("")
			fmt.Fprintln(w, labelStyle.Render("Cleaning up")+" ...")
		case core.ExtractDone:
			bar.finish("✔ Extracted")
		}
	}
}

func logInstallEvent(e core.InstallEvent) {
	switch e := e.(type) {
	case core.DownloadBegin:
		if e.Current > 0 {
			logging.LogInfo("⬇️ Resuming download at %s of %s", formatBytes(e.Current), formatBytes(e.Total))
		} else {
			logging.LogInfo("⬇️ Downloading %s", formatBytes(e.Total))
		}
	case core.VerifyBegin:
		logging.LogInfo("🔐 Verifying checksum")
	case core.ExtractBegin:
		logging.LogInfo("📦 Extracting")
	case core.ExtractWarning:
		logging.LogWarn("⚠️ %s", e.Message)
	case core.ExtractDone:
		logging.LogInfo("✅ Extracted")
	}
}

// removeSink renders removal progress for one version.
func removeSink(w *os.File, label string) core.RemoveSink {
	if jsonOutput || !isTTY(w) {
		return nil
	}

	bar := newProgressBar(w)
	return func(e core.RemoveEvent) {
		switch e := e.(type) {
		case core.RemoveStart:
			bar.start(label, 0, e.Total)
		case core.RemoveProgress:
			bar.set(e.Removed)
		case core.RemoveEnd:
			bar.finish("")
		}
	}
}
