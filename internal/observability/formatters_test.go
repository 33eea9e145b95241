package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/marcus/journey-keeper/internal/journey"
)

func TestPrintJourney(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	j := &journey.Journey{
		ID:              uuid.New(),
		TemplateID:      "kitchen-v1",
		Status:          journey.JourneyStatusInProgress,
		CurrentStepID:   "layout",
		ProgressPercent: 30,
		Steps: []*journey.Step{
			{ID: "scope", Status: journey.StepStatusCompleted},
			{ID: "layout", Status: journey.StepStatusInProgress},
			{ID: "finishes", Status: journey.StepStatusNotStarted},
		},
	}

	p.PrintJourney(j)
	output := buf.String()

	assert.Contains(t, output, "JOURNEY")
	assert.Contains(t, output, "kitchen-v1")
	assert.Contains(t, output, "30%")
	assert.Contains(t, output, "scope")
	assert.Contains(t, output, "layout")
}

func TestPrintJourney_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJourney(nil)

	assert.Empty(t, buf.String())
}

func TestPrintJourney_ForcedStep(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	j := &journey.Journey{
		TemplateID: "kitchen-v1",
		Status:     journey.JourneyStatusInProgress,
		Steps: []*journey.Step{
			{ID: "layout", Status: journey.StepStatusCompleted, ForceCompleted: true},
		},
	}

	p.PrintJourney(j)

	assert.Contains(t, buf.String(), "(forced)")
}

func TestPrintJourneyList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summaries := []journey.JourneySummary{
		{ID: uuid.New(), TemplateID: "kitchen-v1", Status: journey.JourneyStatusInProgress, ProgressPercent: 40},
		{ID: uuid.New(), TemplateID: "bathroom-v1", Status: journey.JourneyStatusCompleted, ProgressPercent: 100},
	}

	p.PrintJourneyList(summaries)
	output := buf.String()

	assert.Contains(t, output, "JOURNEYS")
	assert.Contains(t, output, "Total journeys: 2")
	assert.Contains(t, output, "kitchen-v1")
	assert.Contains(t, output, "bathroom-v1")
}

func TestPrintJourneyList_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJourneyList(nil)

	assert.Contains(t, buf.String(), "No journeys found")
}

func TestPrintStepBoard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStepBoard(journey.StepBoard{
		Total:          5,
		Completed:      2,
		InProgress:     1,
		NotStarted:     1,
		NeedsAttention: 1,
		Available:      []string{"finishes"},
		Unavailable:    []string{"final-review"},
	})
	output := buf.String()

	assert.Contains(t, output, "STEP BOARD")
	assert.Contains(t, output, "Completed:       2/5")
	assert.Contains(t, output, "Needs attention: 1")
	assert.Contains(t, output, "finishes")
	assert.Contains(t, output, "final-review")
}

func TestPrintAttachments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	newer := uuid.New()
	attachments := []*journey.Attachment{
		{
			ID:   uuid.New(),
			Kind: journey.AttachmentKindUserUploaded,
			Ref:  "s3://photos/before.jpg",
			Annotations: journey.Annotations{
				Label: "Before photo",
				Tags:  []string{"before", "demo"},
			},
			ReplacedByID: &newer,
		},
	}

	p.PrintAttachments("demo", attachments)
	output := buf.String()

	assert.Contains(t, output, "ATTACHMENTS: demo")
	assert.Contains(t, output, "Before photo")
	assert.Contains(t, output, "(superseded)")
	assert.Contains(t, output, "before, demo")
}

func TestPrintAttachments_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAttachments("demo", nil)

	assert.Contains(t, buf.String(), "No attachments")
}

func TestPrintTemplate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	tmpl := &journey.Template{
		ID:   "kitchen-v1",
		Name: "Kitchen Renovation",
		Steps: []journey.StepTemplate{
			{ID: "scope", Name: "Scope", Ordinal: 1, Required: true},
			{ID: "layout", Name: "Layout", Ordinal: 2, Required: true, DependsOn: []string{"scope"}},
			{ID: "moodboard", Name: "Moodboard", Ordinal: 3},
		},
	}

	p.PrintTemplate(tmpl)
	output := buf.String()

	assert.Contains(t, output, "TEMPLATE: kitchen-v1")
	assert.Contains(t, output, "Kitchen Renovation")
	assert.Contains(t, output, "needs: scope")
	assert.Contains(t, output, "(optional)")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	j := &journey.Journey{
		TemplateID: "a-very-long-template-identifier-that-should-be-truncated-to-fit",
		Status:     journey.JourneyStatusInProgress,
	}

	p.PrintJourney(j)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
