package handler

import "strings"

const (
	MessageHelp = "👋 Expense assistant\n\n" +
		"/add <amount> <category> [note] - record an expense\n" +
		"/daily - today's totals\n" +
		"/monthly - this month's totals\n" +
		"/summary - all-time totals\n" +
		"/export - CSV of this month\n" +
		"/setreminder HH:MM - daily report at a time\n" +
		"/reminder - show the daily reminder\n" +
		"/reminderoff - turn the daily reminder off\n" +
		"/reset - delete all data (a backup is sent first)"
	MessageUnknownCommand = "❓ Unknown command. Use /help to see what I can do."
	MessageAddUsage       = "ℹ️ Usage: /add <amount> <category> [note]\nExample: /add 150 food lunch"
	MessageInvalidAmount  = "❌ Amount must be a positive number."
	MessageReminderUsage  = "ℹ️ Usage: /setreminder HH:MM\nExample: /setreminder 09:00"
	MessageInvalidTime    = "❌ Invalid time. Use HH:MM between 00:00 and 23:59."
	MessageReminderOff    = "🔕 Daily reminder turned off."
	MessageNoReminder     = "🔕 No daily reminder set. Use /setreminder HH:MM."
)

// Command is a parsed slash command. Args keeps the raw text after the name.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits "/name@bot args" into its parts. The bot suffix that
// group chats append is dropped and the name is lower-cased.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	head, args, _ := strings.Cut(text, " ")
	name, _, _ := strings.Cut(strings.TrimPrefix(head, "/"), "@")

	if name == "" {
		return Command{}, false
	}

	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}, true
}

// AddArgs splits "/add" arguments into amount, category and an optional note.
func AddArgs(args string) (amount, category, note string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", "", false
	}

	return fields[0], fields[1], strings.Join(fields[2:], " "), true
}
