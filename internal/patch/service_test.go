package patch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/elantharil/elastarter/internal/config"
	"github.com/elantharil/elastarter/internal/manifest"
	"github.com/elantharil/elastarter/internal/model"
	"github.com/elantharil/elastarter/internal/version"
)

// buildZip returns an in-memory zip archive with a single file
func buildZip(t *testing.T, name, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("Failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}

	return buf.Bytes()
}

// patchServer serves a manifest at /patches.json and zip archives below /patches/
func patchServer(t *testing.T, archives map[string][]byte, stamp time.Time) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/patches.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{")
		first := true
		for key := range archives {
			if !first {
				fmt.Fprint(w, ",")
			}
			first = false
			fmt.Fprintf(w, "%q: %q", key, "http://"+r.Host+"/patches/"+key+".zip")
		}
		fmt.Fprint(w, "}")
	})

	mux.HandleFunc("/patches/", func(w http.ResponseWriter, r *http.Request) {
		key := filepath.Base(r.URL.Path)
		key = key[:len(key)-len(".zip")]
		data, ok := archives[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Last-Modified", stamp.Format(http.TimeFormat))
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(data)
	})

	return httptest.NewServer(mux)
}

func newTestService(t *testing.T, serverURL string) (*Service, *config.Config, *version.Store) {
	t.Helper()

	tmp := t.TempDir()
	cfg := &config.Config{
		PatchesURL:     serverURL + "/patches.json",
		DataDir:        filepath.Join(tmp, "data"),
		UnpackDir:      filepath.Join(tmp, "unpack"),
		VersionMapFile: filepath.Join(tmp, "versions.json"),
		ClientExe:      "client.exe",
	}

	manifests := manifest.NewClient(filepath.Join(tmp, "patches_local.json"))
	store := version.NewStore(cfg.VersionMapFile)

	return NewService(cfg, manifests, store, 2), cfg, store
}

func TestRunAppliesNewPatches(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art":  buildZip(t, "art.mul", "art contents"),
		"maps": buildZip(t, "map0.mul", "map contents"),
	}, stamp)
	defer server.Close()

	svc, cfg, store := newTestService(t, server.URL)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tasks := svc.GetAllTasks()
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}

	for _, task := range tasks {
		if task.Status != model.TaskStatusCompleted {
			t.Errorf("Task %s: expected Completed, got %s (%s)", task.FileKey, task.Status, task.LastError)
		}
	}

	// Archives landed in the data dir
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "art.zip")); err != nil {
		t.Errorf("Expected downloaded archive in data dir: %v", err)
	}

	// Contents were extracted into the unpack dir
	data, err := os.ReadFile(filepath.Join(cfg.UnpackDir, "art.mul"))
	if err != nil {
		t.Fatalf("Expected extracted file: %v", err)
	}
	if string(data) != "art contents" {
		t.Errorf("Expected 'art contents', got '%s'", data)
	}

	// Version map records the remote timestamp
	if got := store.Get("art"); !got.Equal(stamp) {
		t.Errorf("Expected recorded stamp %v, got %v", stamp, got)
	}
}

func TestRunSkipsUpToDateEntries(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art": buildZip(t, "art.mul", "art contents"),
	}, stamp)
	defer server.Close()

	svc, cfg, store := newTestService(t, server.URL)

	// Local version already matches the remote timestamp
	if err := store.Set("art", stamp); err != nil {
		t.Fatalf("Failed to seed version map: %v", err)
	}

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tasks := svc.GetAllTasks()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Status != model.TaskStatusUpToDate {
		t.Errorf("Expected UpToDate, got %s", tasks[0].Status)
	}

	// Nothing was downloaded
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "art.zip")); !os.IsNotExist(err) {
		t.Error("Expected no download for up-to-date entry")
	}
}

func TestRunContinuesAfterProbeFailure(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	goodZip := buildZip(t, "art.mul", "art contents")

	mux := http.NewServeMux()
	mux.HandleFunc("/patches.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"art": "http://%s/patches/art.zip", "broken": "http://%s/missing/broken.zip"}`,
			r.Host, r.Host)
	})
	mux.HandleFunc("/patches/art.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", stamp.Format(http.TimeFormat))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(goodZip)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	svc, _, _ := newTestService(t, server.URL)

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	byKey := map[string]*model.PatchTask{}
	for _, task := range svc.GetAllTasks() {
		byKey[task.FileKey] = task
	}

	if byKey["art"].Status != model.TaskStatusCompleted {
		t.Errorf("Expected 'art' Completed, got %s (%s)", byKey["art"].Status, byKey["art"].LastError)
	}
	if byKey["broken"].Status != model.TaskStatusError {
		t.Errorf("Expected 'broken' Error, got %s", byKey["broken"].Status)
	}
}

func TestRunFallsBackToCachedManifest(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art": buildZip(t, "art.mul", "art contents"),
	}, stamp)
	defer server.Close()

	svc, cfg, _ := newTestService(t, server.URL)

	// First run populates the cache
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Second service with an unreachable manifest URL must use the cache.
	// The archive server itself stays up.
	cfg2 := *cfg
	cfg2.PatchesURL = "http://127.0.0.1:1/patches.json"
	manifests := manifest.NewClient(filepath.Join(filepath.Dir(cfg.VersionMapFile), "patches_local.json"))
	store2 := version.NewStore(filepath.Join(t.TempDir(), "versions.json"))
	svc2 := NewService(&cfg2, manifests, store2, 1)

	if err := svc2.Run(context.Background()); err != nil {
		t.Fatalf("Run with cached manifest failed: %v", err)
	}

	tasks := svc2.GetAllTasks()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task from cached manifest, got %d", len(tasks))
	}
	if tasks[0].Status != model.TaskStatusCompleted {
		t.Errorf("Expected Completed, got %s (%s)", tasks[0].Status, tasks[0].LastError)
	}
}

func TestRunFailsWithoutManifestOrCache(t *testing.T) {
	svc, _, _ := newTestService(t, "http://127.0.0.1:1")

	if err := svc.Run(context.Background()); err == nil {
		t.Error("Expected error when manifest and cache are both unavailable")
	}
}

func TestUpdateCallback(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art": buildZip(t, "art.mul", "art contents"),
	}, stamp)
	defer server.Close()

	svc, _, _ := newTestService(t, server.URL)

	var mu sync.Mutex
	seen := map[model.TaskStatus]bool{}
	svc.SetUpdateCallback(func(task *model.PatchTask) {
		mu.Lock()
		seen[task.Status] = true
		mu.Unlock()
	})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, status := range []model.TaskStatus{
		model.TaskStatusPending,
		model.TaskStatusChecking,
		model.TaskStatusDownloading,
		model.TaskStatusExtracting,
		model.TaskStatusCompleted,
	} {
		if !seen[status] {
			t.Errorf("Expected callback for status %s", status)
		}
	}
}

func TestTasksAreSnapshots(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art": buildZip(t, "art.mul", "art contents"),
	}, stamp)
	defer server.Close()

	svc, _, _ := newTestService(t, server.URL)

	// Callbacks receive copies, so writes from the receiver side must
	// never reach the service's internal state
	svc.SetUpdateCallback(func(task *model.PatchTask) {
		task.Status = model.TaskStatusError
		task.LastError = "mutated by receiver"
	})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tasks := svc.GetAllTasks()
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Status != model.TaskStatusCompleted {
		t.Errorf("Expected Completed, got %s (%s)", tasks[0].Status, tasks[0].LastError)
	}

	// Getter results are copies too
	tasks[0].Status = model.TaskStatusError
	if again, _ := svc.GetTask(tasks[0].ID); again.Status != model.TaskStatusCompleted {
		t.Errorf("Expected snapshot mutation to leave service state untouched, got %s", again.Status)
	}
}

func TestRunCancelled(t *testing.T) {
	stamp := time.Date(2025, time.May, 10, 8, 0, 0, 0, time.UTC)
	server := patchServer(t, map[string][]byte{
		"art": buildZip(t, "art.mul", "art contents"),
	}, stamp)
	defer server.Close()

	svc, _, _ := newTestService(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Manifest fetch uses the cancelled context, so the run errors out
	if err := svc.Run(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestDownloadClientTimesOutOnStalledServer(t *testing.T) {
	stall := make(chan struct{})

	// Accepts the request but never sends response headers
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-stall
	}))
	defer server.Close()
	defer close(stall)

	client := newDownloadClient(100 * time.Millisecond)
	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("Expected timeout error from stalled server")
	}
}

func TestArchiveFileName(t *testing.T) {
	name, err := archiveFileName("http://example.com/patcher/art.7z?token=abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if name != "art.7z" {
		t.Errorf("Expected 'art.7z', got '%s'", name)
	}

	if _, err := archiveFileName("http://example.com/"); err == nil {
		t.Error("Expected error for URL without filename")
	}
}
