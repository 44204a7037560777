package ui

import "github.com/elantharil/elastarter/internal/model"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyStartClient      = "start_client"
	KeyClose            = "close"
	KeySettings         = "settings"
	KeyLanguage         = "language"
	KeyMaxParallel      = "max_parallel"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyOpenGameFolder   = "open_game_folder"
	KeyCheckingPatches  = "checking_patches"
	KeyUpdateFailed     = "update_failed"
	KeyAllDone          = "all_done"
	KeyClientStarting   = "client_starting"
	KeyClientStarted    = "client_started"
	KeyClientFailed     = "client_failed"
	KeyWineMissing      = "wine_missing"
	KeySettingsSaved    = "settings_saved"
	KeyErrorOpenFolder  = "error_open_folder"
	KeyStatusPending    = "status_pending"
	KeyStatusChecking   = "status_checking"
	KeyStatusUpToDate   = "status_up_to_date"
	KeyStatusDownload   = "status_downloading"
	KeyStatusExtracting = "status_extracting"
	KeyStatusCompleted  = "status_completed"
	KeyStatusStopped    = "status_stopped"
	KeyStatusError      = "status_error"
)

// NewLocalization creates a new localization manager. German is the default
// because the patch server and its player base are German.
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "de",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to German
	if texts, exists := l.texts["de"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"de": "Deutsch",
		"en": "English",
	}
}

// StatusText returns the localized label for a task status
func (l *Localization) StatusText(status model.TaskStatus) string {
	switch status {
	case model.TaskStatusPending:
		return l.GetText(KeyStatusPending)
	case model.TaskStatusChecking:
		return l.GetText(KeyStatusChecking)
	case model.TaskStatusUpToDate:
		return l.GetText(KeyStatusUpToDate)
	case model.TaskStatusDownloading:
		return l.GetText(KeyStatusDownload)
	case model.TaskStatusExtracting:
		return l.GetText(KeyStatusExtracting)
	case model.TaskStatusCompleted:
		return l.GetText(KeyStatusCompleted)
	case model.TaskStatusStopped:
		return l.GetText(KeyStatusStopped)
	case model.TaskStatusError:
		return l.GetText(KeyStatusError)
	default:
		return status.String()
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// German texts
	l.texts["de"] = map[string]string{
		KeyAppTitle:         "ElaStarter",
		KeyStartClient:      "Client starten",
		KeyClose:            "Schließen",
		KeySettings:         "Einstellungen",
		KeyLanguage:         "Sprache",
		KeyMaxParallel:      "Max. parallele Downloads",
		KeySave:             "Speichern",
		KeyCancel:           "Abbrechen",
		KeyOpenGameFolder:   "Spielordner öffnen",
		KeyCheckingPatches:  "Lade Patch-Informationen...",
		KeyUpdateFailed:     "Fehler: Patches konnten nicht geladen werden.",
		KeyAllDone:          "Alle Aufgaben abgeschlossen!",
		KeyClientStarting:   "Client wird gestartet...",
		KeyClientStarted:    "Client erfolgreich gestartet.",
		KeyClientFailed:     "Fehler beim Starten des Clients",
		KeyWineMissing:      "Wine ist nicht installiert oder nicht im PATH.",
		KeySettingsSaved:    "Einstellungen gespeichert!",
		KeyErrorOpenFolder:  "Spielordner konnte nicht geöffnet werden",
		KeyStatusPending:    "Wartet",
		KeyStatusChecking:   "Überprüfe...",
		KeyStatusUpToDate:   "Aktuell",
		KeyStatusDownload:   "Wird heruntergeladen...",
		KeyStatusExtracting: "Wird entpackt...",
		KeyStatusCompleted:  "Aktualisiert",
		KeyStatusStopped:    "Abgebrochen",
		KeyStatusError:      "Fehler",
	}

	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "ElaStarter",
		KeyStartClient:      "Start client",
		KeyClose:            "Close",
		KeySettings:         "Settings",
		KeyLanguage:         "Language",
		KeyMaxParallel:      "Max parallel downloads",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyOpenGameFolder:   "Open game folder",
		KeyCheckingPatches:  "Loading patch information...",
		KeyUpdateFailed:     "Error: patches could not be loaded.",
		KeyAllDone:          "All tasks completed!",
		KeyClientStarting:   "Starting client...",
		KeyClientStarted:    "Client started successfully.",
		KeyClientFailed:     "Failed to start the client",
		KeyWineMissing:      "Wine is not installed or not in PATH.",
		KeySettingsSaved:    "Settings saved!",
		KeyErrorOpenFolder:  "Could not open the game folder",
		KeyStatusPending:    "Waiting",
		KeyStatusChecking:   "Checking...",
		KeyStatusUpToDate:   "Up to date",
		KeyStatusDownload:   "Downloading...",
		KeyStatusExtracting: "Extracting...",
		KeyStatusCompleted:  "Updated",
		KeyStatusStopped:    "Cancelled",
		KeyStatusError:      "Error",
	}
}
