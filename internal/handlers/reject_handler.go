package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"harir-backend/internal/middleware"
	"harir-backend/internal/models"
	"harir-backend/internal/services"

	"harir-backend/pkg/utils"
)

type RejectHandler struct {
	Service *services.RejectService
}

func NewRejectHandler(s *services.RejectService) *RejectHandler {
	return &RejectHandler{Service: s}
}

// CreateReject handles POST /api/rejects
func (h *RejectHandler) CreateReject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	rec, err := h.Service.CreateReject(r.Context(), &req, userID)
	if err != nil {
		if err.Error() == "visit not found" {
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, rec)
}

// ListRejects handles GET /api/rejects
func (h *RejectHandler) ListRejects(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	rejects, err := h.Service.ListRejects(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if rejects == nil {
		rejects = []*models.RejectRecord{}
	}
	utils.JSON(w, http.StatusOK, rejects)
}
