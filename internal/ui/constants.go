package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconError    = "❌"
	IconDone     = "✅"
	IconFolder   = "📁"
)

// Window sizing
const (
	WindowWidth  float32 = 560
	WindowHeight float32 = 480
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
)
