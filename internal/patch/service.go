package patch

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elantharil/elastarter/internal/archive"
	"github.com/elantharil/elastarter/internal/config"
	"github.com/elantharil/elastarter/internal/manifest"
	"github.com/elantharil/elastarter/internal/model"
	"github.com/elantharil/elastarter/internal/platform"
	"github.com/elantharil/elastarter/internal/version"
)

// Service runs the patch pipeline: fetch manifest, probe remote timestamps,
// download and extract newer archives, record applied versions
type Service struct {
	tasks       map[string]*model.PatchTask
	taskOrder   []string // manifest order for stable UI listing
	tasksMutex  sync.RWMutex
	maxParallel int
	cfg         *config.Config
	manifests   *manifest.Client
	store       *version.Store
	onUpdate    func(*model.PatchTask) // callback for UI updates
}

// NewService creates a new patch service
func NewService(cfg *config.Config, manifests *manifest.Client, store *version.Store, maxParallel int) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		tasks:       make(map[string]*model.PatchTask),
		maxParallel: maxParallel,
		cfg:         cfg,
		manifests:   manifests,
		store:       store,
	}
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.PatchTask)) {
	s.onUpdate = callback
}

// Run executes one full update check. It fetches the manifest (falling back
// to the local cache), creates one task per entry and processes them under
// the parallelism limit. Run returns once every task reached a terminal
// state; individual task failures do not abort the run.
func (s *Service) Run(ctx context.Context) error {
	m, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}

	if err := platform.CreateDirectoryIfNotExists(s.cfg.DataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := platform.CreateDirectoryIfNotExists(s.cfg.UnpackDir); err != nil {
		return fmt.Errorf("failed to create unpack directory: %w", err)
	}

	// Stable order so the UI always lists files the same way
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tasks := make([]*model.PatchTask, 0, len(keys))
	s.tasksMutex.Lock()
	for _, key := range keys {
		task := &model.PatchTask{
			ID:        uuid.NewString(),
			FileKey:   key,
			URL:       m[key],
			Status:    model.TaskStatusPending,
			StartedAt: time.Now(),
		}
		s.tasks[task.ID] = task
		s.taskOrder = append(s.taskOrder, task.ID)
		tasks = append(tasks, task)
	}
	s.tasksMutex.Unlock()

	for _, task := range tasks {
		s.notifyUpdate(task)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxParallel)
	for _, task := range tasks {
		wg.Add(1)
		go func(task *model.PatchTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			s.processTask(ctx, task)
		}(task)
	}
	wg.Wait()

	return nil
}

// GetTask returns a snapshot of a task by ID. Workers keep mutating the
// internal task under the service mutex, so callers only ever see copies.
func (s *Service) GetTask(id string) (*model.PatchTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetAllTasks returns snapshots of all tasks in manifest order
func (s *Service) GetAllTasks() []*model.PatchTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.PatchTask, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		snapshot := *s.tasks[id]
		tasks = append(tasks, &snapshot)
	}
	return tasks
}

// loadManifest fetches the manifest from the patch server, falling back to
// the locally cached copy when the server is unreachable
func (s *Service) loadManifest(ctx context.Context) (manifest.Manifest, error) {
	m, err := s.manifests.Fetch(ctx, s.cfg.PatchesURL)
	if err == nil {
		return m, nil
	}

	log.Printf("Manifest fetch failed (%v), trying local cache", err)

	cached, cacheErr := s.manifests.LoadCached()
	if cacheErr != nil {
		return nil, fmt.Errorf("manifest unavailable: %w", err)
	}

	return cached, nil
}

// processTask runs the full pipeline for one manifest entry
func (s *Service) processTask(ctx context.Context, task *model.PatchTask) {
	if ctx.Err() != nil {
		s.setStatus(task, model.TaskStatusStopped)
		return
	}

	s.setStatus(task, model.TaskStatusChecking)

	remote, err := s.manifests.Probe(ctx, task.URL)
	if err != nil {
		s.setError(ctx, task, err)
		return
	}

	s.tasksMutex.Lock()
	task.RemoteStamp = remote
	s.tasksMutex.Unlock()

	local := s.store.Get(task.FileKey)
	if !remote.After(local) {
		s.setStatus(task, model.TaskStatusUpToDate)
		return
	}

	archiveName, err := archiveFileName(task.URL)
	if err != nil {
		s.setError(ctx, task, err)
		return
	}
	archivePath := filepath.Join(s.cfg.DataDir, archiveName)

	s.tasksMutex.Lock()
	task.ArchivePath = archivePath
	task.Status = model.TaskStatusDownloading
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)

	if err := s.downloadWithRetry(ctx, task, archivePath); err != nil {
		s.setError(ctx, task, err)
		return
	}

	s.setStatus(task, model.TaskStatusExtracting)

	if err := archive.Extract(archivePath, s.cfg.UnpackDir); err != nil {
		s.setError(ctx, task, err)
		return
	}

	if err := s.store.Set(task.FileKey, remote); err != nil {
		s.setError(ctx, task, err)
		return
	}

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusCompleted
	task.Progress = 1.0
	task.Percent = 100
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

// setStatus transitions a task and notifies the UI
func (s *Service) setStatus(task *model.PatchTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	task.Status = status
	if status.IsFinished() {
		task.FinishedAt = time.Now()
	}
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

// setError marks a task failed, or stopped when the run context was cancelled
func (s *Service) setError(ctx context.Context, task *model.PatchTask, err error) {
	s.tasksMutex.Lock()
	if ctx.Err() != nil {
		task.Status = model.TaskStatusStopped
	} else {
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
		log.Printf("Patch task %s (%s) failed: %v", task.ID, task.FileKey, err)
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notifyUpdate(task)
}

// notifyUpdate calls the update callback with a snapshot of the task, so
// the receiver can read it without holding the service mutex
func (s *Service) notifyUpdate(task *model.PatchTask) {
	if s.onUpdate == nil {
		return
	}

	s.tasksMutex.RLock()
	snapshot := *task
	s.tasksMutex.RUnlock()

	s.onUpdate(&snapshot)
}

// archiveFileName derives the local archive filename from the patch URL
func archiveFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid archive URL %s: %w", rawURL, err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("archive URL %s has no filename", rawURL)
	}

	return name, nil
}
