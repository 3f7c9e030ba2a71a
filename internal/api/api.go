package api

import (
	"context"
	"net/http"

	"recfetch/internal/model"
	"recfetch/internal/render"
)

const (
	msgDownloading        = "Downloading..."
	msgAlreadyDownloading = "Already downloading..."
	msgNotDownloading     = "Not downloading..."
	msgFailed             = "Failed to download"
)

type Manager interface {
	StartDownload(ctx context.Context) error
	Status(ctx context.Context) model.Snapshot
	Button(ctx context.Context) ([]byte, error)
}

func New(manager Manager) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /download", StartDownload(manager))
	mux.HandleFunc("GET /status", GetStatus(manager))
	mux.HandleFunc("GET /button", GetButton(manager))
	mux.HandleFunc("GET /api/status", GetStatusJSON(manager))
	return mux
}

func StartDownload(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "StartDownload")

		if err := m.StartDownload(h.Ctx()); err != nil {
			h.WriteError(err)
			return
		}

		h.WriteText(msgDownloading, http.StatusOK)
	}
}

// GetStatus отдаёт состояние текстом. Непросроченная ошибка важнее активной загрузки.
func GetStatus(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "GetStatus")

		snap := m.Status(h.Ctx())
		switch {
		case snap.HasError:
			h.WriteText(msgFailed, http.StatusOK)
		case snap.Running:
			h.WriteText(msgDownloading, http.StatusOK)
		default:
			h.WriteText(msgNotDownloading, http.StatusOK)
		}
	}
}

func GetButton(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "GetButton")

		icon, err := m.Button(h.Ctx())
		if err != nil {
			h.WriteError(err)
			return
		}

		h.WriteImage(render.ContentType, icon)
	}
}

func GetStatusJSON(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "GetStatusJSON")
		h.WriteResponse(m.Status(h.Ctx()), http.StatusOK)
	}
}
