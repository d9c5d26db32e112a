package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// experimentItem adapts an experiment to the list's default delegate.
type experimentItem struct {
	experiment domain.Experiment
}

func (i experimentItem) Title() string       { return i.experiment.Title }
func (i experimentItem) Description() string { return i.experiment.Preview }
func (i experimentItem) FilterValue() string { return i.experiment.Title }

func experimentItems(experiments []domain.Experiment) []list.Item {
	items := make([]list.Item, 0, len(experiments))
	for _, e := range experiments {
		items = append(items, experimentItem{experiment: e})
	}
	return items
}
