package main

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/elantharil/elastarter/internal/config"
	"github.com/elantharil/elastarter/internal/manifest"
	"github.com/elantharil/elastarter/internal/patch"
	"github.com/elantharil/elastarter/internal/ui"
	"github.com/elantharil/elastarter/internal/version"
)

// appVersion is set during build via -ldflags "-X main.appVersion=X.Y.Z"
var appVersion = "dev"

const (
	AppID   = "de.elantharil.elastarter"
	AppName = "ElaStarter"
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, appVersion)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(AppName)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	// Initialize services
	cfg := config.Load(config.ConfigFileName)

	manifests := manifest.NewClient(filepath.Join(".", manifest.LocalCacheFile))
	store := version.NewStore(cfg.VersionMapFile)

	settings := config.NewSettings(myApp)
	patchSvc := patch.NewService(cfg, manifests, store, settings.GetMaxParallelDownloads())

	// Create and setup UI; the update check starts with the window
	ui.NewRootUI(myWindow, myApp, cfg, patchSvc)

	myWindow.ShowAndRun()
}
