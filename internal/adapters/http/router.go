package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/usecase"
	"github.com/edulab-ai/virtual-student/internal/observability/metrics"
)

const maxUploadBytes = 64 << 20

// Router exposes the conversation lifecycle over HTTP.
type Router struct {
	conv    *usecase.Conversations
	metrics *metrics.ServerMetrics
	service string

	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(
	conv *usecase.Conversations,
	serverMetrics *metrics.ServerMetrics,
	service string,
	rateLimitRPS float64,
	rateLimitBurst int,
) *Router {
	return &Router{
		conv:           conv,
		metrics:        serverMetrics,
		service:        service,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.healthz)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Route("/v1/conversations", func(r chi.Router) {
		r.Post("/", rt.startConversation)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", rt.endConversation)
			r.Post("/messages", rt.postMessage)
			r.Post("/documents", rt.uploadDocument)
			r.Post("/mode", rt.switchMode)
		})
	})

	var handler http.Handler = r
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = rt.metrics.Middleware(rt.service, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) startConversation(w http.ResponseWriter, r *http.Request) {
	sessionID, greeting, err := rt.conv.Start(r.Context())
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.metrics.SessionStarted()
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": sessionID,
		"greeting":   greeting,
		"mode":       string(domain.ModeDefaultPersona),
	})
}

func (rt *Router) endConversation(w http.ResponseWriter, r *http.Request) {
	if err := rt.conv.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		rt.writeError(w, err)
		return
	}
	rt.metrics.SessionEnded()
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) postMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	mode := rt.sessionMode(sessionID)
	start := time.Now()

	reply, err := rt.conv.HandleMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		rt.metrics.RecordTurn(rt.service, mode, "error", time.Since(start))
		rt.writeError(w, err)
		return
	}
	rt.metrics.RecordTurn(rt.service, mode, "ok", time.Since(start))

	writeJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
		"mode":  mode,
	})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	filename := fileHeader.Filename
	if strings.TrimSpace(filename) == "" {
		filename = "document.pdf"
	}

	status, err := rt.conv.HandleUpload(r.Context(), sessionID, filename, file)
	if err != nil {
		rt.metrics.RecordUpload(rt.service, "error")
		rt.writeError(w, err)
		return
	}
	rt.metrics.RecordUpload(rt.service, "ok")

	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"mode":   rt.sessionMode(sessionID),
	})
}

func (rt *Router) switchMode(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	target, err := domain.ParseMode(req.Mode)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	status, err := rt.conv.SwitchMode(r.Context(), sessionID, target)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"mode":   rt.sessionMode(sessionID),
	})
}

// sessionMode is a best-effort read for response bodies and metric
// labels; a vanished session simply reports unknown.
func (rt *Router) sessionMode(sessionID string) string {
	session, err := rt.conv.Lookup(sessionID)
	if err != nil {
		return "unknown"
	}
	return string(session.Mode())
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
