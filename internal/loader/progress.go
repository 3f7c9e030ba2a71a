package loader

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"golang.org/x/time/rate"

	"recfetch/internal/model"
)

const bufSize = 32 * 1024

// ProgressFunc получает процент загрузки в диапазоне [0, 100].
type ProgressFunc func(percentage float64)

// progressTracker переводит количество скачанных байт в проценты.
// Опубликованный процент никогда не уменьшается.
type progressTracker struct {
	total      int64
	last       float64
	onProgress ProgressFunc
	log        *slog.Logger
	logEvery   rate.Sometimes
}

func (p *progressTracker) update(done int64) {
	pct := percentage(done, p.total)
	if pct < p.last {
		pct = p.last
	}
	p.last = pct
	p.onProgress(pct)

	p.logEvery.Do(func() {
		p.log.Info("downloading", "progress", formatProgress(done, p.total))
	})
}

func (p *progressTracker) finish() {
	p.last = 100
	p.onProgress(100)
}

func percentage(done, total int64) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	return min(100*float64(done)/float64(total), 100)
}

// progressWriter считает записанные байты. Ошибки записи оборачиваются
// в ErrTransferIO, чтобы отличать их от ошибок чтения из сети.
type progressWriter struct {
	w       io.Writer
	written int64
	onWrite func(written int64)
}

func (pw *progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.written += int64(n)
	if n > 0 {
		pw.onWrite(pw.written)
	}
	if err != nil {
		return n, fmt.Errorf("%w: %w", model.ErrTransferIO, err)
	}
	return n, nil
}

// copyFrom копирует r блоками по bufSize, чтобы прогресс обновлялся
// на каждый блок, а не один раз в конце.
func (pw *progressWriter) copyFrom(r io.Reader) (int64, error) {
	buf := make([]byte, bufSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := pw.Write(buf[:n]); err != nil {
				return pw.written, err
			}
		}
		if readErr == io.EOF {
			return pw.written, nil
		}
		if readErr != nil {
			return pw.written, readErr
		}
	}
}

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// formatBytes форматирует размер в двоичных единицах с точностью до двух знаков:
//
//	0 -> "0 B", 1536 -> "1.5 KB", 3221225472 -> "3 GB"
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

func formatProgress(done, total int64) string {
	return fmt.Sprintf("%s of %s (%.2f%%)", formatBytes(done), formatBytes(total), percentage(done, total))
}
