package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldtechnologies/wiremail/internal/metrics"
)

// maxUploadBytes bounds a single attachment.
const maxUploadBytes = 25 << 20

// UploadResponse represents the upload response body.
type UploadResponse struct {
	Attachment string `json:"attachment"`
}

// Upload stores one attachment and returns its opaque reference. Clients put
// the reference into the third field of a send frame; the relay never
// inspects it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		h.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	ref, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	metrics.UploadsStored.Inc()

	h.JSON(w, http.StatusCreated, UploadResponse{Attachment: ref})
}

// ServeFile streams a stored attachment back by reference.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	path, err := h.uploads.Path(ref)
	if err != nil {
		h.Error(w, http.StatusNotFound, "attachment not found")
		return
	}

	http.ServeFile(w, r, path)
}
