package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/class-marketplace/internal/upload"
)

const uploadFormField = "image"

type ImageStore interface {
	Save(filename string, r io.Reader) (string, error)
}

type UploadHandler struct {
	store   ImageStore
	maxBody int64
}

func NewUploadHandler(store ImageStore) *UploadHandler {
	return &UploadHandler{store: store, maxBody: upload.MaxImageSize + 1<<20}
}

func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.Post("/upload", h.handleUpload)
}

// handleUpload stores the multipart "image" field and answers with the public
// path of the stored file as plain text.
func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, clientMessage(upload.ErrTooLarge, "Image is too large"))
			return
		}
		log.Warn().Err(err).Msg("Failed to read uploaded image")
		respondWithError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	storedPath, err := h.store.Save(header.Filename, file)
	if err != nil {
		respondWithDomainError(w, err, "Failed to store image")
		return
	}

	respondWithText(w, http.StatusOK, storedPath)
}

// ServeUploads serves stored images under upload.PublicPrefix.
func ServeUploads(router chi.Router, dir string) {
	fileServer := http.StripPrefix(upload.PublicPrefix, http.FileServer(http.Dir(dir)))
	router.Get(upload.PublicPrefix+"*", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == upload.PublicPrefix {
			respondWithError(w, http.StatusNotFound, "Not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
