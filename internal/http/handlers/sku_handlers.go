package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ballop/merchplan/internal/sku"
)

// GenerateSKUHandler godoc
// @Summary Allocate the next SKU for a brand
// @Tags sku
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param brand body SKURequest true "Brand name"
// @Success 200 {object} SKUResult
// @Failure 400 {string} string "Invalid input"
// @Failure 502 {object} SKUResult "Allocation failed; sku is the sentinel"
// @Router /sku/next [post]
func GenerateSKUHandler(w http.ResponseWriter, r *http.Request) {
	var req SKURequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Brand == "" {
		http.Error(w, "missing brand", http.StatusBadRequest)
		return
	}

	next, err := allocator.Next(r.Context(), req.Brand)
	if err != nil {
		if errors.Is(err, sku.ErrAllocationFailed) {
			// The sentinel is returned so the caller can show it, but it
			// must not be persisted.
			if werr := writeJSON(w, http.StatusBadGateway, SKUResult{SKU: next}); werr != nil {
				log.Printf("Failed to write JSON response: %v", werr)
			}
			return
		}
		http.Error(w, "could not allocate sku", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, SKUResult{SKU: next}); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}
