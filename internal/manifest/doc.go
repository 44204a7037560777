package manifest

// Package manifest handles the patch manifest (patches.json): fetching it
// from the patch server, caching it locally as a fallback, and probing
// remote archives for their Last-Modified timestamps.
