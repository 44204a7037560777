package ui

import (
	"testing"

	"github.com/elantharil/elastarter/internal/model"
)

func TestLocalizationDefaults(t *testing.T) {
	l := NewLocalization()

	if l.GetCurrentLanguage() != "de" {
		t.Errorf("Expected default language 'de', got '%s'", l.GetCurrentLanguage())
	}

	if got := l.GetText(KeyStartClient); got != "Client starten" {
		t.Errorf("Expected 'Client starten', got '%s'", got)
	}
}

func TestLocalizationSetLanguage(t *testing.T) {
	l := NewLocalization()

	l.SetLanguage("en")
	if got := l.GetText(KeyStartClient); got != "Start client" {
		t.Errorf("Expected 'Start client', got '%s'", got)
	}

	// Unknown language keeps the current one
	l.SetLanguage("fr")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected language to stay 'en', got '%s'", l.GetCurrentLanguage())
	}
}

func TestLocalizationUnknownKey(t *testing.T) {
	l := NewLocalization()

	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("Expected key fallback, got '%s'", got)
	}
}

func TestStatusText(t *testing.T) {
	l := NewLocalization()

	if got := l.StatusText(model.TaskStatusUpToDate); got != "Aktuell" {
		t.Errorf("Expected 'Aktuell', got '%s'", got)
	}

	l.SetLanguage("en")
	if got := l.StatusText(model.TaskStatusExtracting); got != "Extracting..." {
		t.Errorf("Expected 'Extracting...', got '%s'", got)
	}

	// Every status has a label in every language
	statuses := []model.TaskStatus{
		model.TaskStatusPending,
		model.TaskStatusChecking,
		model.TaskStatusUpToDate,
		model.TaskStatusDownloading,
		model.TaskStatusExtracting,
		model.TaskStatusStopped,
		model.TaskStatusCompleted,
		model.TaskStatusError,
	}
	for _, lang := range []string{"de", "en"} {
		l.SetLanguage(lang)
		for _, status := range statuses {
			if got := l.StatusText(status); got == "" {
				t.Errorf("Missing %s label for status %s", lang, status)
			}
		}
	}
}
