// Package parser converts driver command strings into Command structs.
// Intentionally dumb: no grammar, just verb aliases and word splitting.
package parser

import (
	"strings"

	"github.com/nathoo/widgetcore/types"
)

var verbAliases = map[string]string{
	// Show
	"open":    "show",
	"display": "show",
	"popup":   "show",
	"request": "show",

	// Hide
	"close":   "hide",
	"dismiss": "hide",

	// Resume
	"unpause":  "resume",
	"continue": "resume",

	// Force
	"set": "force",

	// Time
	"t":       "tick",
	"step":    "tick",
	"advance": "tick",
	"sleep":   "wait",
	"z":       "wait",

	// Lifecycle
	"add":     "register",
	"reg":     "register",
	"remove":  "unregister",
	"unreg":   "unregister",
	"kill":    "destroy",
	"gc":      "drain",
	"flush":   "drain",

	// Queries
	"ls":      "list",
	"status":  "list",
	"widgets": "list",
	"q":       "queue",
	"queues":  "queue",
	"info":    "inspect",
	"x":       "inspect",
	"examine": "inspect",
	"?":       "help",
}

// widgetVerbs take the rest of the line as a widget name.
var widgetVerbs = map[string]bool{
	"show":       true,
	"hide":       true,
	"resume":     true,
	"register":   true,
	"unregister": true,
	"destroy":    true,
	"inspect":    true,
}

// leadingWidgetVerbs take a one-word widget name followed by arguments.
var leadingWidgetVerbs = map[string]bool{
	"force": true,
}

// fillers are dropped wherever they appear after the verb.
var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"to": true, "as": true, "into": true, "for": true,
}

// Parse converts a raw command string into a Command. Verbs are matched
// case-insensitively; widget names and arguments keep their case.
func Parse(input string) types.Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Command{}
	}

	words := strings.Fields(input)
	words = expandMultiWordVerbs(words)

	verb := strings.ToLower(words[0])
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	rest := stripFillers(words[1:])

	cmd := types.Command{Verb: verb}
	switch {
	case len(rest) == 0:
	case widgetVerbs[verb]:
		cmd.Widget = strings.Join(rest, " ")
	case leadingWidgetVerbs[verb]:
		cmd.Widget = rest[0]
		if len(rest) > 1 {
			cmd.Args = rest[1:]
		}
	default:
		cmd.Args = rest
	}
	return cmd
}

// expandMultiWordVerbs handles "pop up", "bring up", "put away" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	first := strings.ToLower(words[0])
	second := strings.ToLower(words[1])
	switch first {
	case "pop", "bring":
		if second == "up" {
			return append([]string{"show"}, words[2:]...)
		}
	case "put", "tuck":
		if second == "away" {
			return append([]string{"hide"}, words[2:]...)
		}
	case "wait", "sleep":
		if second == "for" {
			return append([]string{"wait"}, words[2:]...)
		}
	case "set":
		if second == "state" {
			return append([]string{"force"}, words[2:]...)
		}
	}

	return words
}

// stripFillers removes filler words from the argument list.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !fillers[strings.ToLower(w)] {
			result = append(result, w)
		}
	}
	return result
}
