package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /api/users
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	query := db.Model(&models.User{}).Order("created_at DESC")
	if role := strings.TrimSpace(r.URL.Query().Get("role")); role != "" {
		query = query.Where("role = ?", role)
	}

	var rows []models.User
	if err := query.Find(&rows).Error; err != nil {
		log.Printf("[users] list error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting users"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"count": len(rows),
			"users": rows,
		},
	})
}

// GET /api/users/{id}
func GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	db := database.DB

	var user models.User
	if err := db.Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		log.Printf("[users] get %s error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting user"})
		return
	}

	var tokens []models.FarmToken
	if err := db.Where("user_id = ?", user.ID).Order("purchase_date DESC").Find(&tokens).Error; err != nil {
		log.Printf("[users] get %s farm tokens error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting user"})
		return
	}

	var history []models.UserTransaction
	if err := db.Where("user_id = ?", user.ID).Order("id DESC").Limit(100).Find(&history).Error; err != nil {
		log.Printf("[users] get %s transactions error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting user"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":                &user,
			"farm_tokens":         tokens,
			"transaction_history": history,
		},
	})
}

type UpdateUserRequest struct {
	Name        *string  `json:"name"`
	Balance     *float64 `json:"balance"`
	LandOwned   *int     `json:"land_owned"`
	TokensOwned *int64   `json:"tokens_owned"`
	Description *string  `json:"description"`
}

// PUT /api/users/{id}
//
// Partial update: only fields present in the body are written. Balance and
// holdings edits exist for demo resets; real money movement happens through
// the farm endpoints.
func UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	if uid != id {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Cannot update another user"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error updating user"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Balance != nil {
		if *req.Balance < 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Balance cannot be negative"})
			return
		}
		updates["balance"] = utils.RoundCurrency(*req.Balance)
	}
	if req.LandOwned != nil {
		updates["land_owned"] = *req.LandOwned
	}
	if req.TokensOwned != nil {
		updates["tokens_owned"] = *req.TokensOwned
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("[users] update %s error: %v", id, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error updating user"})
			return
		}
		db.Where("public_id = ?", id).First(&user)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User updated successfully",
		Data:    map[string]interface{}{"user": &user},
	})
}
