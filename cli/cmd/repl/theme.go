package repl

import "github.com/charmbracelet/lipgloss"

// theme is the set of styles used to draw the REPL.
type theme struct {
	prompt, ctrlPrompt lipgloss.Style
	input, result      lipgloss.Style
	failure, hint      lipgloss.Style

	// Completion candidates.
	candidate, candidateMatch lipgloss.Style
	picked, pickedMatch       lipgloss.Style

	// Signature hints.
	sig, sigName, sigParam lipgloss.Style
}

func color(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

//nolint:gochecknoglobals
var style = theme{
	prompt:     color("6").Bold(true),
	ctrlPrompt: color("5").Bold(true),
	input:      color("15"),
	result:     color("2"),
	failure:    color("1"),
	hint:       color("8"),

	candidate:      color("4"),
	candidateMatch: color("4").Bold(true),
	picked:         color("0").Background(lipgloss.Color("4")),
	pickedMatch:    color("0").Background(lipgloss.Color("4")).Bold(true),

	sig:      color("8"),
	sigName:  color("6").Bold(true),
	sigParam: color("11").Bold(true),
}
