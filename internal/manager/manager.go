package manager

import (
	"context"
	"fmt"
	"sync"

	"recfetch/internal/loader"
	"recfetch/internal/logger"
	"recfetch/internal/memstor"
	"recfetch/internal/model"
	"recfetch/internal/render"
)

var (
	ErrAlreadyRunning = model.ErrAlreadyRunning
)

// Manager запускает загрузки по одной и отдаёт их состояние.
type Manager struct {
	dest   string
	stor   *memstor.Memstor
	loader *loader.Loader
	render *render.Renderer
	wg     sync.WaitGroup // активная загрузка
}

func New(dest string, stor *memstor.Memstor, ldr *loader.Loader, rnd *render.Renderer) *Manager {
	return &Manager{
		dest:   dest,
		stor:   stor,
		loader: ldr,
		render: rnd,
	}
}

// StartDownload запускает загрузку в фоне и сразу возвращает управление.
// Если загрузка уже идёт, возвращает ErrAlreadyRunning.
//
// Загрузка не отменяется вместе с ctx: она идёт до успеха или ошибки.
// Ошибка загрузки попадает в журнал ошибок хранилища.
func (m *Manager) StartDownload(ctx context.Context) error {
	if !m.stor.TrySetRunning() {
		return ErrAlreadyRunning
	}

	m.wg.Add(1)
	go m.download(context.WithoutCancel(ctx))

	return nil
}

func (m *Manager) download(ctx context.Context) {
	log := logger.FromContext(ctx).With("op", "download")

	// флаг освобождается на любом пути, после записи ошибки
	defer m.wg.Done()
	defer m.stor.Clear()
	defer func() {
		if p := recover(); p != nil {
			log.Error("*** panic recovered ***", "panic", p)
			m.stor.PushError(fmt.Errorf("panic: %v", p))
		}
	}()

	path, err := m.loader.Fetch(ctx, m.dest, m.stor.SetPercentage)
	if err != nil {
		m.stor.PushError(err)
		log.Error("failed to download", "error", err)
		return
	}

	log.Info("downloaded", "path", path)
}

func (m *Manager) Status(ctx context.Context) model.Snapshot {
	return m.stor.Snapshot()
}

// Button рисует иконку для текущего состояния.
func (m *Manager) Button(ctx context.Context) ([]byte, error) {
	return m.render.Render(m.stor.Snapshot())
}

// Wait ждёт завершения активной загрузки или отмены ctx.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
