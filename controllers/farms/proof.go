package farms

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const maxProofSize = 10 << 20 // 10 MiB

// POST /api/farms/{farmId}/proof
//
// Uploads the ownership proof document (deed, survey report) to object
// storage and records the object key on the farm. The proof hash itself is
// set at farm creation; this stores the underlying document.
func (c *Controller) UploadProof(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	if !utils.StorageConfigured() {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Proof storage is not configured"})
		return
	}

	var farm models.Farm
	if err := c.db.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error uploading proof"})
		return
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please attach a proof document"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unsupported proof document type"})
		return
	}

	objectKey := fmt.Sprintf("proofs/%s/%d%s", farm.FarmID, time.Now().UnixNano(), ext)
	if err := utils.UploadProofDocument(r.Context(), objectKey, file); err != nil {
		log.Printf("[proof] upload for %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error uploading proof"})
		return
	}

	if err := c.db.Model(&farm).Update("proof_object_key", objectKey).Error; err != nil {
		log.Printf("[proof] key update for %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error uploading proof"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Proof document uploaded successfully",
		Data:    map[string]interface{}{"proof_object_key": objectKey},
	})
}

// GET /api/farms/{farmId}/proof
func (c *Controller) ProofURL(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	if !utils.StorageConfigured() {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Proof storage is not configured"})
		return
	}

	var farm models.Farm
	if err := c.db.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting proof"})
		return
	}

	if farm.ProofObjectKey == "" {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "No proof document uploaded for this farm"})
		return
	}

	url, err := utils.PresignProofURL(r.Context(), farm.ProofObjectKey, 3600)
	if err != nil {
		log.Printf("[proof] presign for %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting proof"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"url":        url,
			"expires_in": 3600,
		},
	})
}
