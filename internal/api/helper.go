package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"recfetch/internal/logger"
	"recfetch/internal/model"
)

type httpError struct {
	StatusCode int
	StatusMsg  string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusMsg)
}

type helper struct {
	ctx context.Context
	log *slog.Logger
	r   *http.Request
	w   http.ResponseWriter
}

func newHelper(w http.ResponseWriter, r *http.Request, op string) *helper {
	ctx := r.Context()
	log := logger.FromContext(ctx).With("op", op)
	return &helper{
		ctx: logger.Context(ctx, log),
		log: log,
		w:   w,
		r:   r,
	}
}

func (h *helper) Ctx() context.Context {
	return h.ctx
}

func (h *helper) WriteError(err error) {
	httpErr := h.mapError(err)
	h.WriteText(httpErr.StatusMsg, httpErr.StatusCode)
}

func (h *helper) mapError(err error) *httpError {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, model.ErrAlreadyRunning):
		return &httpError{http.StatusConflict, msgAlreadyDownloading}
	}

	h.log.Warn("unhandled error has been detected", "error", err)
	return &httpError{500, "internal error"}
}

// WriteText пишет тело как есть, без перевода строки в конце.
func (h *helper) WriteText(text string, statusCode int) {
	h.write("text/plain; charset=utf-8", []byte(text), statusCode)
}

func (h *helper) WriteImage(contentType string, body []byte) {
	h.w.Header().Set("cache-control", "no-store")
	h.write(contentType, body, http.StatusOK)
}

func (h *helper) WriteResponse(resp any, statusCode int) {
	h.w.Header().Add("content-type", "application/json")
	h.w.WriteHeader(statusCode)
	err := json.NewEncoder(h.w).Encode(resp)
	if err != nil {
		h.log.Error("write respose failed", "error", err)
	}
}

func (h *helper) write(contentType string, body []byte, statusCode int) {
	h.w.Header().Set("content-type", contentType)
	h.w.WriteHeader(statusCode)
	if _, err := h.w.Write(body); err != nil {
		h.log.Error("write respose failed", "error", err)
	}
}
