// Package httpapi exposes the REST surface of the PIX stream service:
// message production, long-poll stream consumption and stream teardown.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/pixstream/pixstream/internal/service"
	"github.com/pixstream/pixstream/internal/storage"
	"github.com/pixstream/pixstream/internal/wire"
)

// pullNextHeader carries the continuation URL the client should call to
// keep pulling from where this response left off.
const pullNextHeader = "Pull-Next"

// batchContentType selects batch negotiation: array bodies and a
// delivery limit of batchLimit. Any other Content-Type (or none) selects
// single-object bodies and a limit of one.
const (
	batchContentType = "multipart/json"
	batchLimit       = 10
)

// Handler holds the HTTP handlers for the PIX stream API.
type Handler struct {
	producer *service.ProducerService
	streams  *service.StreamService
}

// New creates a Handler backed by the given services.
func New(producer *service.ProducerService, streams *service.StreamService) *Handler {
	return &Handler{producer: producer, streams: streams}
}

// Register mounts all routes on the mux. The literal "start" segment
// takes precedence over the {interactionID} wildcard, so stream starts
// and continuations share a path shape.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.hello)
	mux.HandleFunc("POST /msgs/{ispb}/{count}", h.postMessages)
	mux.HandleFunc("GET /{ispb}/stream/start", h.startStream)
	mux.HandleFunc("GET /{ispb}/stream/{interactionID}", h.continueStream)
	mux.HandleFunc("DELETE /{ispb}/stream/{interactionID}", h.finishStream)
}

func (h *Handler) hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "Hello World!")
}

// postMessages handles POST /msgs/{ispb}/{count}: generate and insert
// count random messages for the ISPB.
func (h *Handler) postMessages(w http.ResponseWriter, r *http.Request) {
	ispb := r.PathValue("ispb")

	count, err := strconv.Atoi(r.PathValue("count"))
	if err != nil || count <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid number of messages")
		return
	}

	msgs, err := h.producer.Insert(r.Context(), ispb, count)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, wire.FormatMessages(msgs))
}

// startStream handles GET /{ispb}/stream/start: admit a new stream and
// long-poll for messages.
func (h *Handler) startStream(w http.ResponseWriter, r *http.Request) {
	ispb := r.PathValue("ispb")
	limit, batch := negotiate(r)

	res, err := h.streams.Start(r.Context(), ispb, limit)
	if err != nil {
		if errors.Is(err, storage.ErrTooManyStreams) {
			writeError(w, http.StatusTooManyRequests, "Too many active streams")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeResult(w, ispb, res, batch)
}

// continueStream handles GET /{ispb}/stream/{interactionID}: resume a
// lineage from a checkpoint token and long-poll for undelivered messages.
func (h *Handler) continueStream(w http.ResponseWriter, r *http.Request) {
	ispb := r.PathValue("ispb")
	token := r.PathValue("interactionID")
	limit, batch := negotiate(r)

	res, err := h.streams.Continue(r.Context(), ispb, token, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeResult(w, ispb, res, batch)
}

// finishStream handles DELETE /{ispb}/stream/{interactionID}: finalize
// the stream and release its claims.
func (h *Handler) finishStream(w http.ResponseWriter, r *http.Request) {
	ispb := r.PathValue("ispb")
	token := r.PathValue("interactionID")

	if err := h.streams.Finish(r.Context(), ispb, token); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// writeResult renders a long-poll outcome: 200 with the formatted
// message(s) on delivery, bodiless 204 on timeout, Pull-Next either way.
func (h *Handler) writeResult(w http.ResponseWriter, ispb string, res *service.Result, batch bool) {
	w.Header().Set(pullNextHeader, fmt.Sprintf("/%s/stream/%s", ispb, res.NextToken))

	if len(res.Messages) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if batch {
		writeJSON(w, http.StatusOK, wire.FormatMessages(res.Messages))
		return
	}
	writeJSON(w, http.StatusOK, wire.FormatMessage(res.Messages[0]))
}

// negotiate maps the request Content-Type to the delivery limit and body
// shape. multipart/json means arrays of up to batchLimit messages;
// everything else means a single object. Parameters like charset are
// ignored, only the media type counts.
func negotiate(r *http.Request) (limit int, batch bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == batchContentType {
		return batchLimit, true
	}
	return 1, false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
