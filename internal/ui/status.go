package ui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// NotifyLevel selects how a notification is colored.
type NotifyLevel string

const (
	LevelError   NotifyLevel = "error"
	LevelNotice  NotifyLevel = "notice"
	LevelSuccess NotifyLevel = "success"
)

// Notification is a transient status message. ID correlates the expiry tick with the
// message it was scheduled for, so a newer message is never cleared early.
type Notification struct {
	ID      int
	Level   NotifyLevel
	Message string
}

// notificationExpiredMsg is sent by the tick scheduled in notify.
type notificationExpiredMsg struct {
	ID int
}

func expireNotification(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return notificationExpiredMsg{ID: id}
	})
}

// StatusModel represents the status bar component
type StatusModel struct {
	Notice      Notification
	CursorIndex int // 1-based cursor row
	TotalRows   int // visible rows
	HelpVisible bool
	Filtered    bool
	NoColor     bool
	Width       int
}

// NewStatusModel creates a new status model
func NewStatusModel() StatusModel {
	return StatusModel{
		Width: 80,
	}
}

// Update handles messages for the status component
func (m StatusModel) Update(_ tea.Msg) (StatusModel, tea.Cmd) {
	return m, nil
}

// View renders the status bar
func (m StatusModel) View() string {
	th := CurrentTheme()
	baseStyle := lipgloss.NewStyle()
	if !m.NoColor {
		if th.FooterBG != nil {
			baseStyle = baseStyle.Background(th.FooterBG)
		}
		baseStyle = baseStyle.Foreground(th.StatusColor)
	}
	statusStyle := baseStyle
	message := ""
	leftAlign := false

	switch {
	case m.Notice.Message != "":
		leftAlign = true
		message = m.Notice.Message
		if !m.NoColor {
			switch m.Notice.Level {
			case LevelError:
				statusStyle = statusStyle.Foreground(th.StatusError)
			case LevelNotice:
				statusStyle = statusStyle.Foreground(th.StatusNotice).Italic(true)
			case LevelSuccess:
				statusStyle = statusStyle.Foreground(th.StatusSuccess)
			}
		}
	case m.HelpVisible:
		leftAlign = true
		message = "Help: press ? or Esc to close"
	case m.TotalRows > 0 && m.CursorIndex > 0:
		message = fmt.Sprintf("%d/%d", m.CursorIndex, m.TotalRows)
		if m.Filtered {
			message = "filtered  " + message
		}
	case m.Filtered:
		message = "filtered  0/0"
	}

	target := 80
	if m.Width > 0 {
		target = m.Width
	}
	message = ansi.Truncate(message, target, "...")

	pad := target - lipgloss.Width(message)
	if pad < 0 {
		pad = 0
	}
	var padded string
	if leftAlign {
		padded = message + strings.Repeat(" ", pad)
	} else {
		padded = strings.Repeat(" ", pad) + message
	}
	return statusStyle.Render(padded)
}

// SetWidth sets the width of the status bar
func (m *StatusModel) SetWidth(width int) {
	m.Width = width
}
