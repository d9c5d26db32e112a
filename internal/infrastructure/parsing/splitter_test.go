package parsing

import (
	"strings"
	"testing"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

func TestSplitFindsHeadings(t *testing.T) {
	text := "Lab Manual\nIntro text\nExperiment 1\nAim: measure g.\nSteps...\nEXPERIMENT 2\nAim: Ohm's law.\nPractical 3: Titration\nUse a burette."
	got := NewSplitter(0).Split(text)

	if len(got) != 3 {
		t.Fatalf("expected 3 experiments, got %d: %+v", len(got), got)
	}
	wantTitles := []string{"Experiment 1", "EXPERIMENT 2", "Practical 3"}
	for i, exp := range got {
		if exp.ID != domain.NewExperimentID(i) {
			t.Fatalf("experiment %d has id %q", i, exp.ID)
		}
		if exp.Title != wantTitles[i] {
			t.Fatalf("experiment %d title = %q, want %q", i, exp.Title, wantTitles[i])
		}
	}
	if got[0].Text != "Experiment 1\nAim: measure g.\nSteps..." {
		t.Fatalf("unexpected section text %q", got[0].Text)
	}
	if strings.Contains(got[0].Preview, "\n") {
		t.Fatalf("preview must not contain newlines: %q", got[0].Preview)
	}
	if strings.Contains(got[0].Text, "Intro text") {
		t.Fatalf("text before the first heading must be dropped")
	}
}

func TestSplitNumberedList(t *testing.T) {
	text := "Contents\n1. Simple pendulum\nMeasure the period.\n2. Vernier caliper\nRead the scale."
	got := NewSplitter(0).Split(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 experiments, got %+v", got)
	}
	if got[0].Title != "1. Simple pendulum" || got[1].Title != "2. Vernier caliper" {
		t.Fatalf("unexpected titles %q %q", got[0].Title, got[1].Title)
	}
}

func TestSplitIsCaseInsensitive(t *testing.T) {
	got := NewSplitter(0).Split("exp 4 lens focal length\nexperiment12 resonance")
	if len(got) != 2 || got[0].Title != "exp 4" || got[1].Title != "experiment12" {
		t.Fatalf("unexpected split %+v", got)
	}
}

func TestSplitWithoutHeadings(t *testing.T) {
	if got := NewSplitter(0).Split("just some notes"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestPreviewCountsRunes(t *testing.T) {
	body := "Experiment 1 " + strings.Repeat("é", 400)
	got := NewSplitter(20).Split(body)
	if len(got) != 1 {
		t.Fatalf("expected one experiment")
	}
	if n := len([]rune(got[0].Preview)); n != 20 {
		t.Fatalf("expected 20 runes, got %d", n)
	}
	if len([]rune(got[0].Text)) != len([]rune(body)) {
		t.Fatalf("text must not be truncated")
	}
}
