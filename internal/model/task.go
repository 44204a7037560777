package model

import (
	"fmt"
	"strings"
	"time"
)

// PatchTask represents a single manifest entry being checked and applied
type PatchTask struct {
	ID          string
	FileKey     string // manifest key, e.g. "art" or "maps"
	URL         string // archive URL from the manifest
	Status      TaskStatus
	Progress    float64 // 0.0 to 1.0
	Percent     int     // 0 to 100
	Speed       string  // human readable speed (e.g., "1.2 MB/s")
	Downloaded  int64   // bytes received so far
	TotalBytes  int64   // Content-Length, 0 if unknown
	LastError   string  // last error message if any
	ArchivePath string  // path of the downloaded archive in the data dir
	RemoteStamp time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// GetDisplayName returns the manifest key, archive filename, or task ID in order of preference
func (pt *PatchTask) GetDisplayName() string {
	if pt.FileKey != "" {
		return pt.FileKey
	}

	if pt.URL != "" {
		parts := strings.Split(pt.URL, "/")
		if name := parts[len(parts)-1]; name != "" {
			return name
		}
	}

	return pt.ID
}

// GetSizeString returns downloaded/total bytes as a human readable fraction
func (pt *PatchTask) GetSizeString() string {
	if pt.TotalBytes <= 0 {
		if pt.Downloaded <= 0 {
			return ""
		}
		return FormatBytes(pt.Downloaded)
	}
	return fmt.Sprintf("%s / %s", FormatBytes(pt.Downloaded), FormatBytes(pt.TotalBytes))
}

// FormatBytes formats a byte count to a human readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
