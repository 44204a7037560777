package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/elantharil/elastarter/internal/model"
)

// PatchRow is a compact row widget showing one manifest entry: its name,
// status, progress and transfer figures
type PatchRow struct {
	widget.BaseWidget

	task         *model.PatchTask
	localization *Localization

	nameLabel   *widget.Label
	statusLabel *widget.Label
	sizeLabel   *widget.Label
	progressBar *widget.ProgressBar
}

// NewPatchRow creates a new patch row widget
func NewPatchRow(task *model.PatchTask, localization *Localization) *PatchRow {
	if task == nil {
		task = &model.PatchTask{Status: model.TaskStatusPending}
	}

	pr := &PatchRow{
		task:         task,
		localization: localization,
	}
	pr.ExtendBaseWidget(pr)
	pr.createUI()
	pr.updateFromTask()
	return pr
}

// UpdateTask updates the row with new task data
func (pr *PatchRow) UpdateTask(task *model.PatchTask) {
	if task == nil {
		return
	}

	pr.task = task
	pr.updateFromTask()
	pr.Refresh()
}

// createUI creates the UI components
func (pr *PatchRow) createUI() {
	pr.nameLabel = widget.NewLabel("")
	pr.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	pr.nameLabel.Truncation = fyne.TextTruncateEllipsis

	pr.statusLabel = widget.NewLabel("")
	pr.statusLabel.Alignment = fyne.TextAlignTrailing

	pr.sizeLabel = widget.NewLabel("")
	pr.sizeLabel.Alignment = fyne.TextAlignTrailing
	pr.sizeLabel.TextStyle = fyne.TextStyle{Monospace: true}

	pr.progressBar = widget.NewProgressBar()
}

// updateFromTask updates UI components based on task state
func (pr *PatchRow) updateFromTask() {
	pr.nameLabel.SetText(pr.task.GetDisplayName())

	switch pr.task.Status {
	case model.TaskStatusError:
		pr.statusLabel.Importance = widget.DangerImportance
		pr.statusLabel.SetText(IconError + " " + pr.localization.StatusText(pr.task.Status))
	case model.TaskStatusCompleted:
		pr.statusLabel.Importance = widget.SuccessImportance
		pr.statusLabel.SetText(IconDone + " " + pr.localization.StatusText(pr.task.Status))
	case model.TaskStatusUpToDate:
		pr.statusLabel.Importance = widget.SuccessImportance
		pr.statusLabel.SetText(pr.localization.StatusText(pr.task.Status))
	case model.TaskStatusDownloading, model.TaskStatusExtracting:
		pr.statusLabel.Importance = widget.HighImportance
		pr.statusLabel.SetText(pr.localization.StatusText(pr.task.Status))
	default:
		pr.statusLabel.Importance = widget.MediumImportance
		pr.statusLabel.SetText(pr.localization.StatusText(pr.task.Status))
	}

	// Transfer figures only make sense while downloading or afterwards
	switch pr.task.Status {
	case model.TaskStatusDownloading:
		text := pr.task.GetSizeString()
		if pr.task.Speed != "" {
			text += "  " + pr.task.Speed
		}
		pr.sizeLabel.SetText(text)
	case model.TaskStatusExtracting, model.TaskStatusCompleted:
		pr.sizeLabel.SetText(pr.task.GetSizeString())
	default:
		pr.sizeLabel.SetText("")
	}

	switch pr.task.Status {
	case model.TaskStatusCompleted, model.TaskStatusUpToDate:
		pr.progressBar.SetValue(1.0)
	default:
		pr.progressBar.SetValue(pr.task.Progress)
	}
}

// CreateRenderer creates the widget renderer
func (pr *PatchRow) CreateRenderer() fyne.WidgetRenderer {
	topRow := container.NewBorder(nil, nil, nil,
		container.NewHBox(pr.sizeLabel, pr.statusLabel),
		pr.nameLabel,
	)

	content := container.NewVBox(topRow, pr.progressBar)
	return widget.NewSimpleRenderer(content)
}
