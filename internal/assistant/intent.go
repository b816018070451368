package assistant

import "regexp"

// Intent is a recognized category of calendar command.
type Intent string

const (
	IntentSchedule Intent = "schedule"
	IntentMove     Intent = "move"
	IntentCancel   Intent = "cancel"
	IntentList     Intent = "list"
)

// Command is a classified calendar command with its extracted entities.
type Command struct {
	Intent   Intent
	Habit    string // captured habit-name span
	Datetime string // captured datetime span (schedule, move)
	Date     string // optional trailing date span (cancel, list)
}

// descriptor pairs an intent with its pattern and entity extractor.
type descriptor struct {
	intent  Intent
	pattern *regexp.Regexp
	extract func(groups map[string]string) Command
}

// intents is evaluated in fixed priority order; the first match wins. Text
// matching several trigger groups always resolves to the earliest intent.
var intents = []descriptor{
	{
		intent:  IntentSchedule,
		pattern: regexp.MustCompile(`(?i)^(schedule|plan|add|create|set up)\s+(an?\s+)?(?P<habit>.*?)\s+(for|on|at)\s+(?P<datetime>.+)$`),
		extract: func(g map[string]string) Command {
			return Command{Intent: IntentSchedule, Habit: g["habit"], Datetime: g["datetime"]}
		},
	},
	{
		intent:  IntentMove,
		pattern: regexp.MustCompile(`(?i)^(move|reschedule|change)\s+(?P<habit>.*?)\s+to\s+(?P<datetime>.+)$`),
		extract: func(g map[string]string) Command {
			return Command{Intent: IntentMove, Habit: g["habit"], Datetime: g["datetime"]}
		},
	},
	{
		intent:  IntentCancel,
		pattern: regexp.MustCompile(`(?i)^(cancel|delete|remove)\s+(?P<habit>.*?)(\s+on\s+(?P<date>.+))?$`),
		extract: func(g map[string]string) Command {
			return Command{Intent: IntentCancel, Habit: g["habit"], Date: g["date"]}
		},
	},
	{
		intent:  IntentList,
		pattern: regexp.MustCompile(`(?i)^(show|list|what are)\s+(my\s+)?(tasks|habits|events|schedule)(\s+for\s+(?P<date>.+))?$`),
		extract: func(g map[string]string) Command {
			return Command{Intent: IntentList, Date: g["date"]}
		},
	},
}

// Classify matches a normalized message against the ordered intent patterns.
// Returns ok=false when the text carries no calendar intent.
func Classify(message string) (Command, bool) {
	for _, d := range intents {
		match := d.pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		groups := make(map[string]string)
		for i, name := range d.pattern.SubexpNames() {
			if name != "" && i < len(match) {
				groups[name] = match[i]
			}
		}
		return d.extract(groups), true
	}
	return Command{}, false
}
