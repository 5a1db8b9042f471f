package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	domain "todo-server/internal/domain/model"
	"todo-server/internal/http/middleware"
	"todo-server/internal/repository"

	"github.com/charmbracelet/log"
)

const ContentTypeJSON = "application/json; charset=UTF-8"

// Options tunes TodoHandler behaviour.
type Options struct {
	// ItemPostCreates makes POST /todos/{id} create a new todo and
	// ignore the path id. Disabled, the route answers 405.
	ItemPostCreates bool
	MaxBodyBytes    int64
	Logger          *log.Logger
}

type TodoHandler struct {
	repo            repository.TodoRepository
	drafts          *DraftDecoder
	logger          *log.Logger
	itemPostCreates bool
}

func NewTodoHandler(repo repository.TodoRepository, opts Options) (*TodoHandler, error) {
	drafts, err := NewDraftDecoder(opts.MaxBodyBytes)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &TodoHandler{
		repo:            repo,
		drafts:          drafts,
		logger:          logger,
		itemPostCreates: opts.ItemPostCreates,
	}, nil
}

type HealthResponse struct {
	Status  string `json:"status"`
	Todos   int    `json:"todos"`
	Deleted int    `json:"deleted"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.List())
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	created := h.repo.Create(draft)
	middleware.LogWithContext(r.Context(), h.logger, log.DebugLevel, "todo created", "id", created.ID)

	writeJSON(w, http.StatusCreated, created)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	todo, err := h.repo.GetByID(id)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	updated, err := h.repo.Update(id, draft)
	if err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.SoftDelete(id); err != nil {
		h.writeRepoError(w, r, err)
		return
	}
	middleware.LogWithContext(r.Context(), h.logger, log.DebugLevel, "todo deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// CreateAtItem handles POST /todos/{id}. The path id plays no part in
// the new record; this mirrors long-standing behaviour that clients may
// depend on and is most likely a mistake.
func (h *TodoHandler) CreateAtItem(w http.ResponseWriter, r *http.Request, pathID string) {
	if !h.itemPostCreates {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	middleware.LogWithContext(r.Context(), h.logger, log.WarnLevel,
		"POST on item path creates a new todo; path id ignored", "path_id", pathID)
	h.Create(w, r)
}

func (h *TodoHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.repo.Stats()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Todos:   stats.Visible,
		Deleted: stats.Deleted,
	})
}

func (h *TodoHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, bool) {
	draft, err := h.drafts.Decode(w, r)
	if err != nil {
		middleware.LogWithContext(r.Context(), h.logger, log.DebugLevel, "rejected body", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return domain.Draft{}, false
	}
	return draft, true
}

func (h *TodoHandler) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	middleware.LogWithContext(r.Context(), h.logger, log.ErrorLevel, "repository error", "err", err)
	w.WriteHeader(http.StatusInternalServerError)
}

// ItemID extracts {id} from /todos/{id}[/...]. It reports false when the
// path does not start with /todos/ or the id segment is empty, "." or "..".
func ItemID(path string) (string, bool) {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] != "" || parts[1] != "todos" {
		return "", false
	}
	switch parts[2] {
	case "", ".", "..":
		return "", false
	}
	return parts[2], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
