package ui

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/elantharil/elastarter/internal/config"
	"github.com/elantharil/elastarter/internal/model"
	"github.com/elantharil/elastarter/internal/patch"
	"github.com/elantharil/elastarter/internal/platform"
)

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	cfg          *config.Config
	settings     *config.Settings
	localization *Localization
	patchSvc     patch.Patcher

	taskList   *widget.List
	tasks      []*model.PatchTask
	tasksMutex sync.Mutex

	titleLabel     *widget.Label
	startClientBtn *widget.Button
	closeBtn       *widget.Button
	folderBtn      *widget.Button

	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	// UI update debouncing
	lastUIUpdate  time.Time
	uiUpdateMutex sync.Mutex

	runCancel context.CancelFunc
}

// NewRootUI creates and initializes the main UI. The patch run starts in
// the background as soon as the window content is set, mirroring how the
// launcher has always behaved: open it and it updates.
func NewRootUI(window fyne.Window, app fyne.App, cfg *config.Config, patchSvc patch.Patcher) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		cfg:          cfg,
		settings:     settings,
		localization: localization,
		patchSvc:     patchSvc,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	ui.patchSvc.SetUpdateCallback(ui.onTaskUpdate)

	ui.setupUI()
	ui.startPatchRun()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	// Header: logo, title, settings
	ui.titleLabel = widget.NewLabel(ui.localization.GetText(KeyAppTitle))
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	var header *fyne.Container
	logo, err := LoadLogoResource()
	if err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
		header = container.NewBorder(nil, nil, container.NewHBox(logoImage, ui.titleLabel), settingsBtn)
	} else {
		header = container.NewBorder(nil, nil, ui.titleLabel, settingsBtn)
	}

	// Notification line under the header
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, nil, nil,
		container.NewVBox(ui.notificationLabel, ui.notificationSpinner))
	ui.notificationContainer.Hide()

	top := container.NewVBox(header, ui.notificationContainer)

	// Patch task list
	ui.taskList = widget.NewList(
		func() int {
			ui.tasksMutex.Lock()
			defer ui.tasksMutex.Unlock()
			return len(ui.tasks)
		},
		func() fyne.CanvasObject { return NewPatchRow(nil, ui.localization) },
		func(id widget.ListItemID, obj fyne.CanvasObject) { ui.updateTaskItem(id, obj) },
	)

	// Bottom buttons
	ui.folderBtn = widget.NewButton(IconFolder+" "+ui.localization.GetText(KeyOpenGameFolder), ui.onOpenGameFolder)
	ui.folderBtn.Importance = widget.LowImportance

	ui.startClientBtn = widget.NewButton(ui.localization.GetText(KeyStartClient), ui.onStartClient)
	ui.startClientBtn.Importance = widget.HighImportance

	ui.closeBtn = widget.NewButton(ui.localization.GetText(KeyClose), ui.onClose)

	buttons := container.NewBorder(nil, nil, ui.folderBtn,
		container.NewHBox(ui.startClientBtn, ui.closeBtn))

	content := container.NewBorder(
		top,        // top
		buttons,    // bottom
		nil,        // left
		nil,        // right
		ui.taskListInScroll(),
	)

	ui.window.SetContent(content)
}

// taskListInScroll keeps the list scrollable in the center region
func (ui *RootUI) taskListInScroll() fyne.CanvasObject {
	return container.NewScroll(ui.taskList)
}

// startPatchRun launches the update check in the background
func (ui *RootUI) startPatchRun() {
	ctx, cancel := context.WithCancel(context.Background())
	ui.runCancel = cancel

	ui.showNotification(ui.localization.GetText(KeyCheckingPatches), true)

	go func() {
		err := ui.patchSvc.Run(ctx)

		fyne.Do(func() {
			if err != nil {
				log.Printf("Patch run failed: %v", err)
				ui.showNotification(IconError+" "+ui.localization.GetText(KeyUpdateFailed), false)
				return
			}

			failed := 0
			for _, task := range ui.patchSvc.GetAllTasks() {
				if task.Status == model.TaskStatusError {
					failed++
				}
			}

			if failed > 0 {
				ui.showNotification(IconError+" "+ui.localization.GetText(KeyUpdateFailed), false)
			} else {
				ui.showNotification(IconDone+" "+ui.localization.GetText(KeyAllDone), false)
			}
		})
	}()
}

// onTaskUpdate handles task updates from the patch service
func (ui *RootUI) onTaskUpdate(task *model.PatchTask) {
	ui.tasksMutex.Lock()
	ui.tasks = ui.patchSvc.GetAllTasks()
	ui.tasksMutex.Unlock()

	ui.debouncedUIUpdate(task.Status.IsFinished())
}

// debouncedUIUpdate refreshes the list, collapsing rapid progress updates.
// Terminal transitions always refresh so final states are never missed.
func (ui *RootUI) debouncedUIUpdate(force bool) {
	ui.uiUpdateMutex.Lock()
	if !force && time.Since(ui.lastUIUpdate) < UIUpdateDebounce {
		ui.uiUpdateMutex.Unlock()
		return
	}
	ui.lastUIUpdate = time.Now()
	ui.uiUpdateMutex.Unlock()

	fyne.Do(func() {
		ui.taskList.Refresh()
	})
}

// updateTaskItem binds a task to its list row
func (ui *RootUI) updateTaskItem(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.tasksMutex.Lock()
	var task *model.PatchTask
	if id >= 0 && id < len(ui.tasks) {
		task = ui.tasks[id]
	}
	ui.tasksMutex.Unlock()

	if task == nil {
		return
	}

	if row, ok := obj.(*PatchRow); ok {
		row.UpdateTask(task)
	}
}

// showNotification displays a message in the notification line
func (ui *RootUI) showNotification(message string, spinning bool) {
	ui.notificationLabel.SetText(message)
	if spinning {
		ui.notificationSpinner.Show()
	} else {
		ui.notificationSpinner.Hide()
	}
	ui.notificationContainer.Show()
	ui.notificationContainer.Refresh()
}

// onStartClient launches the game client
func (ui *RootUI) onStartClient() {
	ui.showNotification(ui.localization.GetText(KeyClientStarting), false)

	go func() {
		err := platform.LaunchClient(ui.cfg.ClientExe)

		fyne.Do(func() {
			switch {
			case errors.Is(err, platform.ErrWineNotFound):
				ui.showNotification(IconError+" "+ui.localization.GetText(KeyWineMissing), false)
			case err != nil:
				log.Printf("Client launch failed: %v", err)
				ui.showNotification(IconError+" "+ui.localization.GetText(KeyClientFailed), false)
			default:
				ui.showNotification(IconDone+" "+ui.localization.GetText(KeyClientStarted), false)
			}
		})
	}()
}

// onOpenGameFolder reveals the unpack directory in the system file manager
func (ui *RootUI) onOpenGameFolder() {
	if err := platform.OpenDirectoryInManager(ui.cfg.UnpackDir); err != nil {
		log.Printf("Failed to open game folder: %v", err)
		ui.showNotification(IconError+" "+ui.localization.GetText(KeyErrorOpenFolder), false)
	}
}

// onClose stops the running update and closes the window
func (ui *RootUI) onClose() {
	if ui.runCancel != nil {
		ui.runCancel()
	}
	ui.window.Close()
}

// onShowSettings opens the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, ui.refreshUITexts).Show()
}

// refreshUITexts re-applies localized texts after a language change
func (ui *RootUI) refreshUITexts() {
	ui.localization.SetLanguage(ui.settings.GetLanguage())

	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.titleLabel.SetText(ui.localization.GetText(KeyAppTitle))
	ui.startClientBtn.SetText(ui.localization.GetText(KeyStartClient))
	ui.closeBtn.SetText(ui.localization.GetText(KeyClose))
	ui.folderBtn.SetText(IconFolder + " " + ui.localization.GetText(KeyOpenGameFolder))
	ui.taskList.Refresh()
}
