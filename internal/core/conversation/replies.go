package conversation

import (
	"fmt"
	"strings"

	"github.com/colonyops/tasktalk/internal/core/task"
	"github.com/colonyops/tasktalk/internal/core/when"
)

const (
	ReplyGreeting     = "Yes, how can I help you?"
	ReplyAskDate      = "When would you like to schedule this task?"
	ReplyNoTasksToday = "You have no tasks scheduled for today. Which date would you like to check?"
	ReplyComingSoon   = "This feature is coming soon!"
	ReplyFallback     = "I'm not sure how to help with that. You can ask me to add a task, delete a task, or show your tasks."
	ReplyUnidentified = "I'm sorry, I couldn't identify which task you want to delete. Please try again."
	ReplyStoreFailure = "Sorry, something went wrong while talking to your task list. Please try again."
	ReplyHelp         = "I can help you manage your tasks. You can say:\n- Add a task\n- Delete a task\n- What are my tasks for today\n- What are my tasks for [date]\n- Show my completed tasks"
	replyDeletePrompt = "Which one would you like to delete? You can say the number or the task name."
)

func replyScheduled(date string) string {
	return fmt.Sprintf("I'll schedule it for %s. What is the task?", when.FormatDate(date))
}

func replyAskTime(text string) string {
	return fmt.Sprintf(`At what time should I schedule "%s"?`, text)
}

func replyAdded(t task.Task) string {
	return fmt.Sprintf(`Task added: "%s" on %s at %s.`, t.Text, when.FormatDate(t.Date), when.FormatTime(t.Time))
}

func replyDeleted(t task.Task) string {
	return fmt.Sprintf(`I've deleted the task "%s".`, t.Text)
}

func replyNoTasksOn(date string) string {
	return fmt.Sprintf("You have no tasks scheduled for %s.", when.FormatDate(date))
}

// replyDeleteCandidates lists tasks numbered from 1. label is either "today"
// or a spoken date.
func replyDeleteCandidates(label string, tasks []task.Task) string {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("%d. %s", i+1, t.Text)
	}
	return fmt.Sprintf("Here are your tasks for %s:\n%s\n%s", label, strings.Join(lines, "\n"), replyDeletePrompt)
}

func replyTaskReport(date string, tasks []task.Task) string {
	if len(tasks) == 0 {
		return replyNoTasksOn(date)
	}

	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("%s at %s", t.Text, t.Time)
	}

	noun := "tasks"
	if len(tasks) == 1 {
		noun = "task"
	}

	return fmt.Sprintf("You have %d %s for %s:\n%s", len(tasks), noun, when.FormatDate(date), strings.Join(lines, "\n"))
}
