package commands

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/styles"
	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/core/when"
)

const labelWidth = 10

func roleStyle(role chatlog.Role) (string, lipgloss.Style) {
	switch role {
	case chatlog.RoleUser:
		return "you", styles.UserStyle
	case chatlog.RoleAssistant:
		return "assistant", styles.AssistantStyle
	default:
		return "system", styles.SystemStyle
	}
}

// renderMessage formats a chat message as a labelled block. Continuation
// lines are indented under the first.
func renderMessage(m chatlog.Message) string {
	label, style := roleStyle(m.Role)

	lines := strings.Split(m.Text, "\n")
	pad := strings.Repeat(" ", labelWidth+1)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}

	head := styles.MutedStyle.Render(padRight(label, labelWidth))
	return head + " " + style.Render(strings.Join(lines, "\n"))
}

// renderTask formats a task as one line: id, spoken date and time, text.
func renderTask(t task.Task) string {
	at := styles.MutedStyle.Render(when.FormatDate(t.Date) + " " + when.FormatTime(t.Time))
	return styles.HeaderStyle.Render(padRight(strconv.FormatInt(t.ID, 10), 14)) + " " + at + "  " + t.Text
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
