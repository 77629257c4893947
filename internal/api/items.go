package api

import (
	"database/sql"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/skatedesk/internal/catalog"
	"github.com/erazemk/skatedesk/internal/imaging"
	"github.com/erazemk/skatedesk/internal/model"
	"github.com/erazemk/skatedesk/internal/store"
)

// ItemsHandler handles the item catalog endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
	Photos imaging.Options
}

type createItemRequest struct {
	Type      model.ItemType             `json:"type"`
	Title     string                     `json:"title"`
	QRCode    string                     `json:"qr_code"`
	Skate     *model.SkateAttributes     `json:"skate"`
	Skatemate *model.SkatemateAttributes `json:"skatemate"`
}

type updateItemRequest struct {
	Title     string                     `json:"title"`
	Skate     *model.SkateAttributes     `json:"skate"`
	Skatemate *model.SkatemateAttributes `json:"skatemate"`
}

// List handles GET /api/items with optional type and status filters.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	t := model.ItemType(r.URL.Query().Get("type"))
	if t != "" && !t.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid item type")
		return
	}
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	items, err := store.ListItemsByType(r.Context(), h.DB, t)
	if err != nil {
		h.Logger.Errorw("Failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	filtered := make([]model.Item, 0, len(items))
	for _, it := range items {
		if status == "" || it.Status == status {
			filtered = append(filtered, it)
		}
	}
	jsonResponse(w, http.StatusOK, filtered)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n := model.NewItem{
		Type:      req.Type,
		Title:     req.Title,
		QRCode:    req.QRCode,
		Skate:     req.Skate,
		Skatemate: req.Skatemate,
	}
	if err := catalog.ValidateNewItem(n); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, n)
	if errors.Is(err, store.ErrDuplicateQRCode) {
		jsonError(w, http.StatusConflict, "qr code already in use")
		return
	}
	if err != nil {
		h.Logger.Errorw("Failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Infow("Item created", "user", claims.Username, "id", item.ID, "type", item.Type, "qr_code", item.QRCode)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		h.Logger.Errorw("Failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Status and notes cannot be edited here.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		h.Logger.Errorw("Failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	// Type and code are immutable; validate the rest against them.
	n := model.NewItem{Type: item.Type, Title: req.Title, Skate: req.Skate, Skatemate: req.Skatemate}
	if err := catalog.ValidateNewItem(n); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = store.UpdateItemDetails(r.Context(), h.DB, id, req.Title, req.Skate, req.Skatemate)
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("Failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	item, _ = store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	err = store.DeleteItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("Failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	claims := GetClaims(r.Context())
	h.Logger.Infow("Item deleted", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	limit := h.Photos.MaxBytes
	if limit <= 0 {
		limit = imaging.DefaultOptions.MaxBytes
	}
	// Leave room for the multipart envelope; imaging enforces the real limit.
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	if err := r.ParseMultipartForm(limit); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file, h.Photos)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	err = store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME)
	if errors.Is(err, store.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.Logger.Errorw("Failed to save image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		h.Logger.Errorw("Failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Activity handles GET /api/items/{id}/activity.
func (h *ItemsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history, err := store.ListItemActivity(r.Context(), h.DB, id)
	if err != nil {
		h.Logger.Errorw("Failed to list item activity", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item activity")
		return
	}
	if history == nil {
		history = []model.Activity{}
	}
	jsonResponse(w, http.StatusOK, history)
}
