package platform

// Package platform contains OS-specific glue: directory helpers, opening
// the unpack directory in the system file manager, and launching the game
// client (directly on Windows, under wine elsewhere).
