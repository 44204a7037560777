package patch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/elantharil/elastarter/internal/model"
)

// Download retry and progress constants
const (
	maxDownloadRetries    = 1
	retryBackoff          = 2 * time.Second
	copyChunkSize         = 64 * 1024
	progressInterval      = 250 * time.Millisecond
	responseHeaderTimeout = 30 * time.Second
)

// newDownloadClient builds a client without an overall timeout: patch
// archives can be large, so the request is bounded by the run context and
// a header timeout catches servers that accept the connection but stall.
func newDownloadClient(headerTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			ResponseHeaderTimeout: headerTimeout,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

var downloadClient = newDownloadClient(responseHeaderTimeout)

// downloadWithRetry downloads the task archive, retrying once after a short
// backoff on failure
func (s *Service) downloadWithRetry(ctx context.Context, task *model.PatchTask, dest string) error {
	var lastErr error

	for attempt := 0; attempt <= maxDownloadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}

			log.Printf("Retrying download for task %s, attempt %d", task.ID, attempt+1)
		}

		err := s.download(ctx, task, dest)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("Download attempt %d failed for task %s: %v", attempt+1, task.ID, err)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return lastErr
}

// download streams the archive to dest, updating task progress as bytes
// arrive. A partial file from an aborted attempt is overwritten.
func (s *Service) download(ctx context.Context, task *model.PatchTask, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fmt.Errorf("invalid archive URL %s: %w", task.URL, err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", task.URL, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	s.tasksMutex.Lock()
	task.TotalBytes = resp.ContentLength
	task.Downloaded = 0
	s.tasksMutex.Unlock()

	started := time.Now()
	lastNotify := time.Time{}
	buf := make([]byte, copyChunkSize)
	var written int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return fmt.Errorf("failed to write %s: %w", dest, writeErr)
			}
			written += int64(n)

			if time.Since(lastNotify) >= progressInterval {
				lastNotify = time.Now()
				s.updateDownloadProgress(task, written, started)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return fmt.Errorf("download of %s interrupted: %w", task.URL, readErr)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}

	s.updateDownloadProgress(task, written, started)
	return nil
}

// updateDownloadProgress recalculates task progress fields from byte counts
func (s *Service) updateDownloadProgress(task *model.PatchTask, written int64, started time.Time) {
	s.tasksMutex.Lock()

	task.Downloaded = written
	if task.TotalBytes > 0 {
		percent := float64(written) / float64(task.TotalBytes) * 100
		task.Percent = int(percent)
		task.Progress = percent / 100.0
	}

	elapsed := time.Since(started)
	if elapsed.Seconds() > 0 {
		bytesPerSecond := float64(written) / elapsed.Seconds()
		task.Speed = fmt.Sprintf("%s/s", model.FormatBytes(int64(bytesPerSecond)))
	}

	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}
