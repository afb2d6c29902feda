package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Fazilniyaz/cable-net-complete-backend/models"
	"github.com/Fazilniyaz/cable-net-complete-backend/repository"
)

type AdminHandler struct {
	Admins *repository.AdminRepository
}

func NewAdminHandler(admins *repository.AdminRepository) *AdminHandler {
	return &AdminHandler{Admins: admins}
}

// UpdateGeoJSON replaces the admin's feature collection wholesale with the
// body produced by the map drawing tool.
func (h *AdminHandler) UpdateGeoJSON(w http.ResponseWriter, r *http.Request) {
	adminID, err := primitive.ObjectIDFromHex(mux.Vars(r)["adminId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid admin id")
		return
	}

	var geojson models.FeatureCollection
	if err := json.NewDecoder(r.Body).Decode(&geojson); err != nil {
		writeError(w, http.StatusBadRequest, "invalid geojson body")
		return
	}

	admin, err := h.Admins.UpdateGeoJSON(r.Context(), adminID, &geojson)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "admin not found")
		return
	}
	if err != nil {
		log.Printf("Update geojson for admin %s: %v", adminID.Hex(), err)
		writeError(w, http.StatusInternalServerError, "error updating geojson")
		return
	}
	writeJSON(w, http.StatusOK, admin.Profile())
}
