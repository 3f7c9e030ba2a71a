package logger

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"runtime/debug"
	"time"
)

// HTTPLogging создает middleware для логирования HTTP-запросов.
//
// GET-запросы (/status и /button опрашиваются постоянно) логируются на уровне Debug,
// остальные - на уровне Info.
func HTTPLogging(log *slog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := log.With("reqID", rand.Uint64(), "from", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
		level := slog.LevelInfo
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			level = slog.LevelDebug
		}

		si := &statusInterceptor{
			ResponseWriter: w,
			log:            log,
		}

		r = r.WithContext(Context(r.Context(), log))

		defer func() {
			if p := recover(); p != nil {
				log.Error("*** panic recovered ***",
					"panic", p,
					"stack", debug.Stack())
				if si.status == 0 {
					http.Error(si, "internal error", 500)
				}
			}
			log.Log(r.Context(), level, "request completed",
				"status", si.status,
				"bytes", si.written,
				"duration", time.Since(start))
		}()

		h.ServeHTTP(si, r)
	})
}

// statusInterceptor запоминает статус ответа и размер тела
type statusInterceptor struct {
	http.ResponseWriter
	log     *slog.Logger
	status  int // 0 = не установлен
	written int64
}

func (si *statusInterceptor) WriteHeader(status int) {
	switch {
	case status >= 100 && status < 200:
		si.ResponseWriter.WriteHeader(status)

	case si.status == 0:
		si.status = status
		si.ResponseWriter.WriteHeader(status)

	case si.status != status:
		si.log.Warn("status code conflict", "origStatus", si.status, "newStatus", status)

	default:
		si.log.Warn("redundant WriteHeader call", "status", status)
	}
}

func (si *statusInterceptor) Write(b []byte) (int, error) {
	if si.status == 0 {
		si.status = http.StatusOK
	}
	n, err := si.ResponseWriter.Write(b)
	si.written += int64(n)
	if err != nil {
		si.log.Error("write failed", "error", err)
	}
	return n, err
}
