package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"
	"clientrepo/internal/repository/filter"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxBodyBytes    = 1 << 20
)

// ClientHandler handles client API requests
type ClientHandler struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewClientHandler creates a new client handler. The logger may be nil.
func NewClientHandler(repo repository.Repository, logger *zap.Logger) *ClientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientHandler{repo: repo, logger: logger}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details string              `json:"details,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// ListClients returns the short form of every matching client, or one page
// of them when page or size is given
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	page, size, paged, err := pageParams(r.URL.Query())
	if err != nil {
		h.writeError(w, "Invalid paging parameters", err.Error(), http.StatusBadRequest)
		return
	}

	var infos []domain.ShortInfo
	if paged {
		infos, err = view.GetPage(r.Context(), page, size)
	} else {
		var clients []domain.Client
		clients, err = view.ReadAll(r.Context())
		infos = make([]domain.ShortInfo, 0, len(clients))
		for _, c := range clients {
			infos = append(infos, c.Short())
		}
	}
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		h.writeError(w, "Failed to list clients", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, toShortDTOs(infos), http.StatusOK)
}

// CountClients returns the number of matching clients
func (h *ClientHandler) CountClients(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	n, err := view.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count clients", zap.Error(err))
		h.writeError(w, "Failed to count clients", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]int{"count": n}, http.StatusOK)
}

// GetClient returns a single client
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get client", zap.Stringer("id", id), zap.Error(err))
		h.writeError(w, "Failed to get client", err.Error(), http.StatusInternalServerError)
		return
	}
	if c == nil {
		h.writeError(w, "Not found", fmt.Sprintf("client %s not found", id), http.StatusNotFound)
		return
	}

	h.writeJSON(w, ClientView(*c), http.StatusOK)
}

// CreateClient validates and stores a new client
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decodeClient(w, r)
	if !ok {
		return
	}

	created, err := h.repo.Add(r.Context(), c)
	if err != nil {
		h.logger.Error("failed to add client", zap.Error(err))
		h.writeError(w, "Failed to create client", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ClientView(*created), http.StatusCreated)
}

// UpdateClient replaces an existing client and returns it as stored
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, ok := h.decodeClient(w, r)
	if !ok {
		return
	}

	replaced, err := h.repo.ReplaceByID(r.Context(), id, c)
	if err != nil {
		h.logger.Error("failed to replace client", zap.Stringer("id", id), zap.Error(err))
		h.writeError(w, "Failed to update client", err.Error(), http.StatusInternalServerError)
		return
	}
	if !replaced {
		h.writeError(w, "Not found", fmt.Sprintf("client %s not found", id), http.StatusNotFound)
		return
	}

	// Return updated client
	stored, err := h.repo.GetByID(r.Context(), id)
	if err != nil || stored == nil {
		h.logger.Warn("failed to fetch updated client", zap.Stringer("id", id), zap.Error(err))
		c.ID = id
		stored = &c
	}
	h.writeJSON(w, ClientView(*stored), http.StatusOK)
}

// DeleteClient deletes a client
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.DeleteByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete client", zap.Stringer("id", id), zap.Error(err))
		h.writeError(w, "Failed to delete client", err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		h.writeError(w, "Not found", fmt.Sprintf("client %s not found", id), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SortClients sorts the repository by its primary field
func (h *ClientHandler) SortClients(w http.ResponseWriter, r *http.Request) {
	reverse := false
	if v := r.URL.Query().Get("reverse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, "Invalid reverse parameter", err.Error(), http.StatusBadRequest)
			return
		}
		reverse = b
	}

	sorter, ok := h.repo.(repository.Sorter)
	if !ok {
		h.writeError(w, "Sort not supported", repository.ErrSortUnsupported.Error(), http.StatusNotImplemented)
		return
	}

	ordering, err := sorter.SortByPrimaryField(r.Context(), reverse)
	if errors.Is(err, repository.ErrSortUnsupported) {
		h.writeError(w, "Sort not supported", err.Error(), http.StatusNotImplemented)
		return
	}
	if err != nil {
		h.logger.Error("failed to sort clients", zap.Error(err))
		h.writeError(w, "Failed to sort clients", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{"ordering": ordering, "reverse": reverse}, http.StatusOK)
}

// Healthz reports liveness
func (h *ClientHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// view returns the repository as seen through the request's filter and
// sort parameters
func (h *ClientHandler) view(w http.ResponseWriter, r *http.Request) (repository.Repository, bool) {
	crit, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, "Invalid filter parameters", err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if crit.IsEmpty() {
		return h.repo, true
	}
	return crit.Apply(filter.New(h.repo)), true
}

func (h *ClientHandler) pathID(w http.ResponseWriter, r *http.Request) (domain.ID, bool) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "Invalid client ID", err.Error(), http.StatusBadRequest)
		return domain.ID{}, false
	}
	return id, true
}

func (h *ClientHandler) decodeClient(w http.ResponseWriter, r *http.Request) (domain.Client, bool) {
	var req ClientRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return domain.Client{}, false
	}

	c, err := req.ToClient()
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, h.logger, ErrorResponse{
				Error:   "Validation failed",
				Details: verr.Error(),
				Fields:  verr.Fields,
			}, http.StatusBadRequest)
			return domain.Client{}, false
		}
		h.writeError(w, "Invalid client", err.Error(), http.StatusBadRequest)
		return domain.Client{}, false
	}
	return c, true
}

// pageParams reads page and size. paged is false when neither is present.
func pageParams(values url.Values) (page, size int, paged bool, err error) {
	rawPage, rawSize := values.Get("page"), values.Get("size")
	if rawPage == "" && rawSize == "" {
		return 0, 0, false, nil
	}

	page, size = 1, defaultPageSize
	if rawPage != "" {
		if page, err = strconv.Atoi(rawPage); err != nil || page < 1 {
			return 0, 0, false, fmt.Errorf("page must be a positive integer, got %q", rawPage)
		}
	}
	if rawSize != "" {
		if size, err = strconv.Atoi(rawSize); err != nil || size < 1 {
			return 0, 0, false, fmt.Errorf("size must be a positive integer, got %q", rawSize)
		}
	}
	return page, size, true, nil
}

func (h *ClientHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	writeJSON(w, h.logger, data, statusCode)
}

func (h *ClientHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, h.logger, ErrorResponse{Error: error, Details: details}, statusCode)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON", zap.Error(err))
	}
}
