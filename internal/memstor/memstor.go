package memstor

import (
	"context"
	"sync"
	"time"

	"recfetch/internal/model"
)

const (
	cleanTimeout = 1 * time.Minute
)

type Snapshot = model.Snapshot

type Config struct {
	ErrorTTL time.Duration
	Now      func() time.Time // nil - time.Now
}

// Memstor хранит состояние загрузки: флаг активной загрузки, процент и журнал ошибок.
// Все методы безопасны для параллельного использования.
type Memstor struct {
	cfg        Config
	mu         sync.RWMutex
	running    bool
	percentage float64
	errors     []model.ErrorEntry // упорядочены по ExpiresAt
	cancel     context.CancelFunc
	cancelled  bool
}

func New(cfg Config) *Memstor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := &Memstor{cfg: cfg}
	m.startErrorCleaner()
	return m
}

// TrySetRunning захватывает флаг загрузки. Возвращает false, если загрузка уже идёт.
func (m *Memstor) TrySetRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running || m.cancelled {
		return false
	}

	m.running = true
	m.percentage = 0
	return true
}

func (m *Memstor) SetPercentage(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.percentage = p
	}
}

// Clear освобождает флаг загрузки.
func (m *Memstor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.running = false
	m.percentage = 0
}

// PushError добавляет ошибку в журнал. Ошибка пропадает из Snapshot через cfg.ErrorTTL.
func (m *Memstor) PushError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors = append(m.errors, model.ErrorEntry{
		Err:       err,
		ExpiresAt: m.cfg.Now().Add(m.cfg.ErrorTTL),
	})
}

// Snapshot возвращает копию состояния. Просроченные ошибки отфильтровываются
// при чтении, не дожидаясь очистки.
func (m *Memstor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.cfg.Now()
	snap := Snapshot{
		Running:    m.running,
		Percentage: m.percentage,
	}
	for _, e := range m.errors {
		if now.Before(e.ExpiresAt) {
			snap.Errors = append(snap.Errors, e.Err.Error())
		}
	}
	snap.HasError = len(snap.Errors) > 0

	return snap
}

func (m *Memstor) cleanExpiredErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.cfg.Now()

	// ошибки добавляются с одинаковым TTL, поэтому просроченные всегда в начале
	n := 0
	for n < len(m.errors) && !now.Before(m.errors[n].ExpiresAt) {
		n++
	}
	if n > 0 {
		m.errors = append(m.errors[:0], m.errors[n:]...)
	}
}

func (m *Memstor) startErrorCleaner() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		tm := time.NewTimer(cleanTimeout)
		defer tm.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tm.C:
				m.cleanExpiredErrors()
				tm.Reset(cleanTimeout)
			}
		}
	}()
}

// Cancel останавливает фоновую очистку. После Cancel новые загрузки не запускаются.
func (m *Memstor) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cancelled {
		m.cancel()
		m.errors = nil
		m.cancelled = true
	}
}
