package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/okian/touchline/internal/adapters/export"
	service "github.com/okian/touchline/internal/app"
	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/internal/metrica"
)

// Multipart part names of POST /v1/matches.
const (
	partEvents   = "events"
	partMetadata = "metadata"
	fieldID      = "id"
)

// multipart parts above this size spill to temporary files.
const multipartMemory = 32 << 20

// MatchesHandler handles match upload and read requests.
type MatchesHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies, maxUploadBytes int64) *MatchesHandler {
	return &MatchesHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

type uploadResponse struct {
	ID      string        `json:"id"`
	RunID   string        `json:"run_id"`
	Summary model.Summary `json:"summary"`
}

// HandleUpload handles POST /v1/matches. The body is multipart with an
// events part and a metadata part, and an optional id field.
func (h *MatchesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	events, err := readPart(r, partEvents)
	if err != nil {
		writeError(w, err)
		return
	}
	metadata, err := readPart(r, partMetadata)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.deps.Parse(r.Context(), service.Request{
		ID:       strings.TrimSpace(r.FormValue(fieldID)),
		Events:   metrica.FromBytes(events),
		Metadata: metrica.FromBytes(metadata),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{ID: res.ID, RunID: res.RunID, Summary: res.Summary})
}

func readPart(r *http.Request, name string) ([]byte, error) {
	f, _, err := r.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read part %s: %w", name, err)
	}
	return b, nil
}

// HandleList handles GET /v1/matches requests.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.deps.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": infos})
}

// HandleGet handles GET /v1/matches/{id} requests.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	info, err := h.deps.Info(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleDelete handles DELETE /v1/matches/{id} requests.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEventsCSV handles GET /v1/matches/{id}/events.csv requests.
func (h *MatchesHandler) HandleEventsCSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"_events.csv"))
	_ = export.WriteEventsCSV(w, res.Match.Events)
}

// HandleEvents handles GET /v1/matches/{id}/events requests. The optional
// category query parameter takes a comma-separated list of shot, pass and
// dribble.
func (h *MatchesHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	categories, err := parseCategories(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.deps.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export.NewCanonical(res.Match.Canonical, categories...))
}

func parseCategories(raw string) ([]model.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []model.Category
	for _, part := range strings.Split(raw, ",") {
		c := model.Category(strings.ToLower(strings.TrimSpace(part)))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, part)
		}
		out = append(out, c)
	}
	return out, nil
}
