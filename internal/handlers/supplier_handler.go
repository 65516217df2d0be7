package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"harir-backend/internal/cache"
	"harir-backend/internal/models"
	"harir-backend/internal/repositories"

	"harir-backend/pkg/utils"
)

type SupplierHandler struct {
	Repo *repositories.SupplierRepository
}

func NewSupplierHandler(repo *repositories.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{Repo: repo}
}

// ListCheckedIn handles GET /api/suppliers/checked-in. The serialized payload
// is cached in redis for 30 seconds; transitions invalidate it.
func (h *SupplierHandler) ListCheckedIn(w http.ResponseWriter, r *http.Request) {
	if data, ok := cache.GetCachedCheckedInSuppliers(r.Context()); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	suppliers, err := h.Repo.ListCheckedIn(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if suppliers == nil {
		suppliers = []*models.CheckedInSupplier{}
	}

	data, err := json.Marshal(suppliers)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	cache.CacheCheckedInSuppliers(r.Context(), data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetSupplier handles GET /api/suppliers?id={id}
func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		utils.Error(w, http.StatusBadRequest, "Missing id query parameter")
		return
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}

	supplier, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Supplier not found")
		return
	}

	utils.JSON(w, http.StatusOK, supplier)
}
