package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"recfetch/internal/model"
	"recfetch/internal/naming"
)

const (
	partSuffix = ".part"
	dirPerm    = 0755
)

type Config struct {
	Prefix        string           // префикс имён файлов записей
	ProgressEvery time.Duration    // период логирования прогресса
	Now           func() time.Time // nil - time.Now
}

// Loader скачивает последнюю запись с сервера. Loader не ограничивает число
// параллельных вызовов Fetch, это делает вызывающий.
type Loader struct {
	dial  Dialer
	names *naming.Generator
	cfg   Config
}

func New(dial Dialer, names *naming.Generator, cfg Config) *Loader {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Loader{
		dial:  dial,
		names: names,
		cfg:   cfg,
	}
}

// Fetch скачивает последний подходящий файл из листинга в каталог dest и
// возвращает путь сохранённого файла. onProgress вызывается синхронно на каждый
// записанный блок, последним значением при успехе всегда будет 100.
//
// Ошибки оборачивают model.ErrConnection, model.ErrNoFilesFound или model.ErrTransferIO.
func (ldr *Loader) Fetch(ctx context.Context, dest string, onProgress ProgressFunc) (string, error) {
	log := slog.With("op", "fetch", "dest", dest)
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	// Подключение
	log.Debug("connecting")
	conn, err := ldr.dial(ctx)
	if err != nil {
		log.Debug("connect failed", "error", err)
		return "", fmt.Errorf("%w: %w", model.ErrConnection, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug("close connection failed", "error", err)
		}
	}()

	// Листинг и выбор файла
	files, err := conn.List(ctx)
	if err != nil {
		log.Debug("list failed", "error", err)
		return "", fmt.Errorf("%w: list failed: %w", model.ErrConnection, err)
	}

	target, err := ldr.selectTarget(files)
	if err != nil {
		log.Debug("nothing to download", "listed", len(files))
		return "", err
	}
	log = log.With("file", target.Name, "size", target.Size)

	// Имя локального файла
	path, err := ldr.resolvePath(dest, target)
	if err != nil {
		log.Error("resolve path failed", "error", err)
		return "", err
	}
	log = log.With("path", path)

	if err := checkDiskSpace(filepath.Dir(path), target.Size, log); err != nil {
		log.Error("disk space check failed", "error", err)
		return "", err
	}

	// Загрузка
	log.Info("download started")
	tracker := &progressTracker{
		total:      target.Size,
		onProgress: onProgress,
		log:        log,
		logEvery:   rate.Sometimes{Interval: ldr.cfg.ProgressEvery},
	}
	if err := download(ctx, conn, target.Name, path, tracker); err != nil {
		log.Error("download failed", "error", err)
		return "", err
	}
	tracker.finish()

	log.Info("download finished")
	return path, nil
}

// selectTarget возвращает последний файл с нужным префиксом в порядке листинга.
func (ldr *Loader) selectTarget(files []model.RemoteFile) (model.RemoteFile, error) {
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if !f.IsDir && strings.HasPrefix(f.Name, ldr.cfg.Prefix) {
			return f, nil
		}
	}
	return model.RemoteFile{}, fmt.Errorf("%w: no %q* files of %d entries", model.ErrNoFilesFound, ldr.cfg.Prefix, len(files))
}

func (ldr *Loader) resolvePath(dest string, target model.RemoteFile) (string, error) {
	plan := ldr.names.Plan(ldr.cfg.Now())

	dir := filepath.Join(dest, plan.DayFolder)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrTransferIO, err)
	}

	path, err := naming.Resolve(dir, plan.BaseName, filepath.Ext(target.Name))
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrTransferIO, err)
	}
	return path, nil
}

// checkDiskSpace проверяет, что файл поместится. Если свободное место узнать
// не удалось, проверка пропускается.
func checkDiskSpace(dir string, size int64, log *slog.Logger) error {
	if size <= 0 {
		return nil
	}
	avail, err := availableSpace(dir)
	if err != nil {
		log.Debug("can't get available space", "error", err)
		return nil
	}
	if avail < size {
		return fmt.Errorf("%w: insufficient disk space: need %s, have %s",
			model.ErrTransferIO, formatBytes(size), formatBytes(avail))
	}
	return nil
}

// download пишет файл во временный path+".part" и переименовывает его после
// подтверждения передачи сервером. При ошибке временный файл удаляется.
func download(ctx context.Context, conn Conn, name, path string, tracker *progressTracker) (err error) {
	r, err := conn.Retr(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: retr failed: %w", model.ErrConnection, err)
	}
	defer func() {
		if r != nil {
			r.Close()
		}
	}()

	part := path + partSuffix
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrTransferIO, err)
	}
	defer func() {
		if f != nil {
			f.Close()
		}
		if err != nil {
			os.Remove(part)
		}
	}()

	pw := &progressWriter{w: f, onWrite: tracker.update}
	if _, err := pw.copyFrom(r); err != nil {
		if errors.Is(err, model.ErrTransferIO) {
			return err
		}
		return fmt.Errorf("%w: read failed: %w", model.ErrConnection, err)
	}

	// Close у ответа дожидается подтверждения от сервера
	closeErr := r.Close()
	r = nil
	if closeErr != nil {
		return fmt.Errorf("%w: transfer not confirmed: %w", model.ErrConnection, closeErr)
	}

	closeErr = f.Close()
	f = nil
	if closeErr != nil {
		return fmt.Errorf("%w: %w", model.ErrTransferIO, closeErr)
	}

	if err := os.Rename(part, path); err != nil {
		return fmt.Errorf("%w: %w", model.ErrTransferIO, err)
	}

	return nil
}
