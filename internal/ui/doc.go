package ui

// Package ui contains the Fyne-based desktop user interface for the
// launcher. It starts the patch run, renders per-file progress rows and
// wires the client-start and settings actions. All UI strings are localized
// via Localization.
