package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ballop/merchplan/internal/catalog"
	"github.com/ballop/merchplan/internal/models"
)

// GetProductsHandler godoc
// @Summary List the product collection
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Product
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, syncer.State().Products()); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// GetProductByIDHandler godoc
// @Summary Get a product by identifier
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok := syncer.State().Product(id)
	if !ok {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err := writeJSON(w, http.StatusOK, product); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// CreateProductHandler godoc
// @Summary Create a product
// @Description JSON body, or multipart with a "product" JSON part and
// @Description optional design/trim/package/tag/plan file parts.
// @Tags products
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param product body models.Product true "Product to create"
// @Success 201 {object} models.Product
// @Failure 400 {string} string "Invalid input"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	saveProduct(w, r, catalog.NewEntity())
}

// UpdateProductHandler godoc
// @Summary Replace a product
// @Tags products
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body models.Product true "Updated product"
// @Success 200 {object} models.Product
// @Failure 400 {string} string "Invalid input"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	saveProduct(w, r, catalog.ExistingEntity(chi.URLParam(r, "id")))
}

func saveProduct(w http.ResponseWriter, r *http.Request, target catalog.Target) {
	var product models.Product
	var files catalog.Attachments

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("product")), &product); err != nil {
			http.Error(w, "invalid product payload", http.StatusBadRequest)
			return
		}
		var err error
		files, err = readAttachments(r)
		if err != nil {
			http.Error(w, "invalid attachment", http.StatusBadRequest)
			return
		}
	} else if err := readJSON(w, r, &product); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if product.Status != "" && !models.ValidStatus(product.Status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	saved, err := pipeline.Save(r.Context(), target, product, files)
	if err != nil {
		if errors.Is(err, catalog.ErrAttachmentUpload) {
			http.Error(w, "attachment upload failed", http.StatusBadGateway)
			return
		}
		http.Error(w, "could not save product", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, saved); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

var attachmentParts = []string{"design", "trim", "package", "tag", "plan"}

func readAttachments(r *http.Request) (catalog.Attachments, error) {
	var files catalog.Attachments
	slots := map[string]**catalog.Upload{
		"design":  &files.Design,
		"trim":    &files.Trim,
		"package": &files.Package,
		"tag":     &files.Tag,
		"plan":    &files.PlanFile,
	}
	for _, part := range attachmentParts {
		file, header, err := r.FormFile(part)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return catalog.Attachments{}, err
		}
		upload, err := readUpload(file, header)
		file.Close()
		if err != nil {
			return catalog.Attachments{}, err
		}
		*slots[part] = upload
	}
	return files, nil
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*catalog.Upload, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &catalog.Upload{Filename: header.Filename, Data: data}, nil
}

// PatchProductHandler godoc
// @Summary Merge-write the supplied fields of a product
// @Tags products
// @Accept json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param fields body map[string]any true "Fields to merge"
// @Success 204 "Updated"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [patch]
func PatchProductHandler(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := readJSON(w, r, &fields); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	applyPatch(w, r, func() error {
		return pipeline.Update(r.Context(), chi.URLParam(r, "id"), fields)
	})
}

// UpdateStatusHandler godoc
// @Summary Change a product's lifecycle status
// @Tags products
// @Accept json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param status body StatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 400 {string} string "Invalid status"
// @Failure 404 {string} string "Not found"
// @Router /products/{id}/status [patch]
func UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	applyPatch(w, r, func() error {
		return pipeline.UpdateStatus(r.Context(), chi.URLParam(r, "id"), models.Status(req.Status))
	})
}

func applyPatch(w http.ResponseWriter, r *http.Request, apply func() error) {
	if err := apply(); err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, catalog.ErrInvalidStatus):
			http.Error(w, "invalid status", http.StatusBadRequest)
		default:
			http.Error(w, "could not update product", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 404 {string} string "Not found"
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "product ID is required", http.StatusBadRequest)
		return
	}
	if err := pipeline.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete product", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
