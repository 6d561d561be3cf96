package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logbeacon/internal/config"
	"github.com/five82/logbeacon/internal/notify"
	"github.com/five82/logbeacon/internal/watch"
)

const (
	glyphNormal = "○"
	glyphAlert  = "●"
)

// renderHeader renders the status line and the file line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasStatus {
		line := bg.Join([]string{
			bg.Render("logbeacon", styles.Logo),
			bg.Render("Starting monitor...", styles.MutedText),
		}, "  ")
		return styles.Header.Width(m.width).Render(line) + "\n" +
			styles.Header.Width(m.width).Render("")
	}

	status := m.snapshot.Status
	tooltip := m.snapshot.Tooltip
	if tooltip == "" {
		tooltip = watch.Tooltip(status.HasAlert)
	}

	parts := []string{
		m.renderIcon(styles),
		bg.Render("logbeacon", styles.Logo),
	}
	if status.HasAlert {
		parts = append(parts, m.theme.Styles().AlertBadge.Render("ALERT"))
	} else {
		parts = append(parts, m.theme.Styles().OkBadge.Render("OK"))
	}
	parts = append(parts,
		bg.Render(tooltip, styles.MutedText),
		bg.Render("every "+config.FormatSeconds(status.Interval)+"s", styles.InfoText),
	)
	if m.snapshot.Acknowledgments > 0 {
		parts = append(parts, bg.Render(
			fmt.Sprintf("acked %s", m.snapshot.LastAcknowledged.Format("15:04:05")),
			styles.FaintText))
	}
	line1 := styles.Header.Width(m.width).Render(bg.Join(parts, "  "))

	pathLimit := m.width - 4
	var fileParts []string
	if m.width >= LayoutCompactWidth {
		pathLimit = m.width - 66
		fileParts = append(fileParts,
			bg.Render(fmt.Sprintf("offset %d", status.LastOffset), styles.MutedText),
			bg.Render(fmt.Sprintf("ack %d", status.AckOffset), styles.MutedText),
			bg.Render("updated "+m.snapshot.LastUpdated.Format("15:04:05"), styles.FaintText),
		)
	}
	fileParts = append([]string{bg.Render(truncateMiddle(status.Path, pathLimit), styles.Text)}, fileParts...)
	line2 := styles.Header.Width(m.width).Render(bg.Join(fileParts, "  "))

	return line1 + "\n" + line2
}

// renderIcon projects the alert flag and blink phase onto a glyph.
func (m Model) renderIcon(styles Styles) string {
	status := m.snapshot.Status
	switch notify.Icon(status.HasAlert, status.BlinkPhase) {
	case notify.IconAlert:
		return styles.DangerText.Render(glyphAlert)
	default:
		return styles.SuccessText.Render(glyphNormal)
	}
}

// renderFooter shows the prompt when one is open, otherwise the last command
// error or the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	footer := styles.Footer.Width(m.width)

	if p := m.prompt; p != nil {
		line := p.input.View()
		if p.err != "" {
			line += "  " + styles.DangerText.Render(p.err)
		} else {
			line += "  " + m.help.ShortHelpView(m.keys.promptHelp(p.kind == promptInterval))
		}
		return footer.Render(line)
	}
	if err := m.snapshot.LastError; err != nil {
		return footer.Render(styles.WarningText.Render(err.Error()))
	}
	if m.previewErr != nil {
		return footer.Render(styles.DangerText.Render("preview: " + m.previewErr.Error()))
	}
	return footer.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderPopup draws the acknowledgment notice centered in the body area.
func (m Model) renderPopup() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Success)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(1, 3).
		Render(ackMessage)

	return lipgloss.Place(
		m.width,
		m.bodyHeight(),
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

const ackMessage = "Acknowledged. Monitoring continues from current log position."
