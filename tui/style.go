package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/widgetcore/types"
)

// Styles used throughout the dashboard.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleOutput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleOperatorInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	stylePanelHeader = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Bold(true)
)

// stateColors gives every lifecycle state its own color in the panel.
var stateColors = map[types.WidgetState]lipgloss.Color{
	types.Closed:       lipgloss.Color("240"),
	types.AnimatingIn:  lipgloss.Color("220"),
	types.Visible:      lipgloss.Color("42"),
	types.Paused:       lipgloss.Color("75"),
	types.AnimatingOut: lipgloss.Color("208"),
}

func styleForState(s types.WidgetState) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(stateColors[s])
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindOutput lineKind = iota
	kindEvent
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "* "):
		return kindEvent
	case strings.HasPrefix(line, "No widget called"),
		strings.HasPrefix(line, "Which "),
		strings.HasPrefix(line, "I don't know how to"),
		strings.HasPrefix(line, "Startup:"),
		strings.Contains(line, "was turned away"):
		return kindError
	default:
		return kindOutput
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindEvent:
		return styleEvent.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleOutput.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
