package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ballop/merchplan/internal/blob"
)

// GetBrandsHandler godoc
// @Summary List the brand registry
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /settings/brands [get]
func GetBrandsHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, syncer.State().Brands()); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// UpdateBrandsHandler godoc
// @Summary Replace the brand registry
// @Description Administrators persist the list remotely; other accounts
// @Description only update their local copy.
// @Tags settings
// @Accept json
// @Security BearerAuth
// @Param brands body BrandsRequest true "New brand list"
// @Success 204 "Updated"
// @Failure 400 {string} string "Invalid input"
// @Router /settings/brands [put]
func UpdateBrandsHandler(w http.ResponseWriter, r *http.Request) {
	var req BrandsRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if len(req.Brands) == 0 {
		http.Error(w, "brand list must not be empty", http.StatusBadRequest)
		return
	}
	if err := pipeline.UpdateBrands(r.Context(), req.Brands); err != nil {
		http.Error(w, "could not update brands", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FileHandler godoc
// @Summary Serve a stored attachment payload
// @Tags files
// @Produce octet-stream
// @Param path path string true "Blob path"
// @Success 200 {file} binary
// @Failure 404 {string} string "Not found"
// @Router /files/{path} [get]
func FileHandler(w http.ResponseWriter, r *http.Request) {
	if blobs == nil {
		http.Error(w, "file storage not configured", http.StatusNotFound)
		return
	}
	path, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || path == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	data, err := blobs.Get(r.Context(), path)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not read file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write file response: %v", err)
	}
}
