package test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"recfetch/internal/api"
	"recfetch/internal/loader"
	"recfetch/internal/logger"
	"recfetch/internal/manager"
	"recfetch/internal/memstor"
	"recfetch/internal/model"
	"recfetch/internal/naming"
	"recfetch/internal/render"
)

var dayNames = []string{"Söndag", "Måndag", "Tisdag", "Onsdag", "Torsdag", "Fredag", "Lördag"}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorder - сервер записи: листинг и файл, чтение которого можно придержать.
type recorder struct {
	mu      sync.Mutex
	files   []model.RemoteFile
	data    []byte
	started chan struct{}
	release chan struct{}
}

func (r *recorder) dial(ctx context.Context) (loader.Conn, error) {
	return r, nil
}

func (r *recorder) List(ctx context.Context) ([]model.RemoteFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files, nil
}

func (r *recorder) Retr(ctx context.Context, name string) (io.ReadCloser, error) {
	close(r.started)
	<-r.release
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) setFiles(files []model.RemoteFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = files
}

type env struct {
	srv     *httptest.Server
	manager *manager.Manager
	render  *render.Renderer
	clock   *clock
	rec     *recorder
	dest    string
}

func setup(t *testing.T) *env {
	t.Helper()

	clk := &clock{now: time.Date(2024, 7, 1, 16, 5, 0, 0, time.UTC)}
	rec := &recorder{
		data:    bytes.Repeat([]byte("frame"), 1000),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	rec.files = []model.RemoteFile{{Name: "Inspelning 1.mp4", Size: int64(len(rec.data))}}

	sched, err := naming.ParseSchedule("1030 1400 1530 1830 2200", 30*time.Minute)
	be.Err(t, err, nil)

	rnd, err := render.New(render.Config{Size: 72, FontSize: 16})
	be.Err(t, err, nil)

	stor := memstor.New(memstor.Config{ErrorTTL: 5 * time.Minute, Now: clk.Now})
	t.Cleanup(stor.Cancel)

	ldr := loader.New(rec.dial, naming.New(sched, "2024070", dayNames), loader.Config{
		Prefix: "Inspelning",
		Now:    clk.Now,
	})

	dest := t.TempDir()
	m := manager.New(dest, stor, ldr, rnd)

	srv := httptest.NewServer(logger.HTTPLogging(logger.FromContext(context.Background()), api.New(m)))
	t.Cleanup(srv.Close)

	return &env{srv: srv, manager: m, render: rnd, clock: clk, rec: rec, dest: dest}
}

func (e *env) do(t *testing.T, method, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, nil)
	be.Err(t, err, nil)
	resp, err := http.DefaultClient.Do(req)
	be.Err(t, err, nil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	be.Err(t, err, nil)
	return resp.StatusCode, body
}

func (e *env) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	be.Err(t, e.manager.Wait(ctx), nil)
}

func TestDownloadFlow(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodGet, "/status")
	be.Equal(t, code, http.StatusOK)
	be.Equal(t, string(body), "Not downloading...")

	code, body = e.do(t, http.MethodPost, "/download")
	be.Equal(t, code, http.StatusOK)
	be.Equal(t, string(body), "Downloading...")

	code, body = e.do(t, http.MethodPost, "/download")
	be.Equal(t, code, http.StatusConflict)
	be.Equal(t, string(body), "Already downloading...")

	<-e.rec.started

	code, body = e.do(t, http.MethodGet, "/status")
	be.Equal(t, code, http.StatusOK)
	be.Equal(t, string(body), "Downloading...")

	code, body = e.do(t, http.MethodGet, "/button")
	be.Equal(t, code, http.StatusOK)
	want, err := e.render.Render(model.Snapshot{Running: true, Percentage: 0})
	be.Err(t, err, nil)
	be.Equal(t, body, want)

	close(e.rec.release)
	e.wait(t)

	code, body = e.do(t, http.MethodGet, "/status")
	be.Equal(t, code, http.StatusOK)
	be.Equal(t, string(body), "Not downloading...")

	// 16:05 в понедельник: порог 1530+30m прошёл, 1830+30m ещё нет
	got, err := os.ReadFile(filepath.Join(e.dest, "20240701 Måndag", "Mån 1530.mp4"))
	be.Err(t, err, nil)
	be.Equal(t, got, e.rec.data)
}

func TestFailedDownloadFlow(t *testing.T) {
	e := setup(t)
	e.rec.setFiles([]model.RemoteFile{{Name: "System Volume Information", IsDir: true}})

	code, _ := e.do(t, http.MethodPost, "/download")
	be.Equal(t, code, http.StatusOK)
	e.wait(t)

	code, body := e.do(t, http.MethodGet, "/status")
	be.Equal(t, code, http.StatusOK)
	be.Equal(t, string(body), "Failed to download")

	_, body = e.do(t, http.MethodGet, "/button")
	want, err := e.render.Render(model.Snapshot{HasError: true})
	be.Err(t, err, nil)
	be.Equal(t, body, want)

	// флаг освобождён, можно попробовать ещё раз
	code, _ = e.do(t, http.MethodPost, "/download")
	be.Equal(t, code, http.StatusOK)
	e.wait(t)

	e.clock.Advance(4 * time.Minute)
	_, body = e.do(t, http.MethodGet, "/status")
	be.Equal(t, string(body), "Failed to download")

	e.clock.Advance(1 * time.Minute)
	_, body = e.do(t, http.MethodGet, "/status")
	be.Equal(t, string(body), "Not downloading...")
}
