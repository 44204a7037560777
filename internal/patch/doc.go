package patch

// Package patch implements the core update pipeline: compare remote archive
// timestamps against the local version map, download newer archives to the
// data directory and extract them into the unpack directory. It manages task
// lifecycle, concurrency limits, and progress propagation to the UI.
