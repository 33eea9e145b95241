// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/marcus/journey-keeper/internal/journey"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// statusGlyphs maps step statuses to a single display character.
var statusGlyphs = map[string]string{
	journey.StepStatusCompleted:      "✓",
	journey.StepStatusInProgress:     "▶",
	journey.StepStatusNotStarted:     "·",
	journey.StepStatusNeedsAttention: "⚠",
	journey.StepStatusBlocked:        "✗",
	journey.StepStatusSkipped:        "»",
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJourney outputs a human-readable summary of a journey and its steps.
func (p *Printer) PrintJourney(j *journey.Journey) {
	if j == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Template: %s\n", j.TemplateID))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", j.Status))
	sb.WriteString(fmt.Sprintf("Progress: %d%%\n", j.ProgressPercent))
	if j.CurrentStepID != "" {
		sb.WriteString(fmt.Sprintf("Current:  %s\n", j.CurrentStepID))
	}
	sb.WriteString("\n")

	if len(j.Steps) > 0 {
		sb.WriteString("Steps:\n")
		for _, step := range j.Steps {
			glyph, ok := statusGlyphs[step.Status]
			if !ok {
				glyph = "?"
			}
			sb.WriteString(fmt.Sprintf("  %s %s", glyph, step.ID))
			if step.ForceCompleted {
				sb.WriteString(" (forced)")
			}
			if step.ID == j.CurrentStepID {
				sb.WriteString("  ←")
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("JOURNEY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJourneyList outputs owner journey summaries, most recent first.
func (p *Printer) PrintJourneyList(summaries []journey.JourneySummary) {
	if len(summaries) == 0 {
		p.printBox("JOURNEYS", "No journeys found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total journeys: %d\n\n", len(summaries)))

	count := min(len(summaries), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := summaries[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, s.ID))
		sb.WriteString(fmt.Sprintf("    %s  %s  %d%%\n", s.TemplateID, s.Status, s.ProgressPercent))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(summaries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more journeys", len(summaries)-maxItemsToShow))
	}

	p.printBox("JOURNEYS", sb.String())
}

// PrintStepBoard outputs step counts per status and which steps are open.
func (p *Printer) PrintStepBoard(board journey.StepBoard) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Completed:       %d/%d\n", board.Completed, board.Total))
	sb.WriteString(fmt.Sprintf("In progress:     %d\n", board.InProgress))
	sb.WriteString(fmt.Sprintf("Not started:     %d\n", board.NotStarted))
	if board.NeedsAttention > 0 {
		sb.WriteString(fmt.Sprintf("Needs attention: %d\n", board.NeedsAttention))
	}
	if board.Blocked > 0 {
		sb.WriteString(fmt.Sprintf("Blocked:         %d\n", board.Blocked))
	}
	if board.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("Skipped:         %d\n", board.Skipped))
	}

	if len(board.Available) > 0 {
		sb.WriteString("\nAvailable now:\n")
		count := min(len(board.Available), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", board.Available[i]))
		}
		if len(board.Available) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(board.Available)-maxItemsToShow))
		}
	}

	if len(board.Unavailable) > 0 {
		sb.WriteString("\nWaiting on dependencies:\n")
		count := min(len(board.Unavailable), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", board.Unavailable[i]))
		}
		if len(board.Unavailable) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(board.Unavailable)-3))
		}
	}

	p.printBox("STEP BOARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAttachments outputs a step's attachments with supersede markers.
func (p *Printer) PrintAttachments(stepID string, attachments []*journey.Attachment) {
	if len(attachments) == 0 {
		p.printBox("ATTACHMENTS: "+stepID, "No attachments")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step %s has %d attachments:\n\n", stepID, len(attachments)))

	count := min(len(attachments), maxItemsToShow)
	for i := 0; i < count; i++ {
		att := attachments[i]
		label := att.Annotations.Label
		if label == "" {
			label = att.Ref
		}
		if len(label) > 40 {
			label = label[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("• [%s] %s", att.Kind, label))
		if att.Superseded() {
			sb.WriteString(" (superseded)")
		}
		sb.WriteString("\n")
		if len(att.Annotations.Tags) > 0 {
			tags := strings.Join(att.Annotations.Tags, ", ")
			if len(tags) > 40 {
				tags = tags[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("  [%s]\n", tags))
		}
	}

	if len(attachments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more attachments", len(attachments)-maxItemsToShow))
	}

	p.printBox("ATTACHMENTS: "+stepID, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplate outputs a template's steps in dependency order.
func (p *Printer) PrintTemplate(tmpl *journey.Template) {
	if tmpl == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:  %s\n", tmpl.Name))
	sb.WriteString(fmt.Sprintf("Steps: %d\n\n", len(tmpl.Steps)))

	for _, step := range tmpl.Steps {
		sb.WriteString(fmt.Sprintf("  %d. %s", step.Ordinal, step.ID))
		if !step.Required {
			sb.WriteString(" (optional)")
		}
		sb.WriteString("\n")
		if len(step.DependsOn) > 0 {
			deps := strings.Join(step.DependsOn, ", ")
			if len(deps) > 40 {
				deps = deps[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("     needs: %s\n", deps))
		}
	}

	p.printBox("TEMPLATE: "+tmpl.ID, strings.TrimSuffix(sb.String(), "\n"))
}
