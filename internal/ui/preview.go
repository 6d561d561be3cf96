package ui

import (
	"strings"

	"github.com/five82/logbeacon/internal/logtail"
)

// updatePreview re-renders the preview lines into the viewport. When follow
// is set and the view was already at the bottom, it stays pinned there.
func (m *Model) updatePreview(follow bool) {
	if !m.ready {
		return
	}
	atBottom := m.preview.AtBottom() || m.preview.TotalLineCount() == 0
	m.preview.SetContent(m.renderPreview())
	if follow && atBottom {
		m.preview.GotoBottom()
	}
}

func (m Model) renderPreview() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	if len(m.previewLines) == 0 {
		msg := "Log file is empty or missing"
		if !m.snapshot.HasStatus {
			msg = "Waiting for first scan..."
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), m.width)
	}

	var b strings.Builder
	for i, line := range m.previewLines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(bg.FillLine(m.renderPreviewLine(line, styles, bg), m.width))
	}
	return b.String()
}

// renderPreviewLine highlights each marker occurrence; the rest of a marker
// line is tinted so it stands out while scrolling.
func (m Model) renderPreviewLine(line string, styles Styles, bg BgStyle) string {
	if !logtail.Contains(line, m.marker) {
		return bg.Render(line, styles.Text)
	}
	var b strings.Builder
	for _, seg := range logtail.Split(line, m.marker) {
		if seg.Marker {
			b.WriteString(styles.Marker.Render(seg.Text))
			continue
		}
		b.WriteString(bg.Render(seg.Text, styles.MarkerLine))
	}
	return b.String()
}
