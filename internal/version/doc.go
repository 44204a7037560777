package version

// Package version persists which archive version (by remote timestamp) has
// been applied for each manifest key.
