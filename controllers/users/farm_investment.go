package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type AddFarmInvestmentRequest struct {
	FarmID           string  `json:"farm_id"`
	FarmOwner        string  `json:"farm_owner"`
	TokensOwned      int64   `json:"tokens_owned"`
	InvestmentAmount float64 `json:"investment_amount"`
}

// POST /api/users/{id}/farm-investment
//
// Records a holding directly on the user. Repeat entries for the same
// (farm, owner) pair merge into one row and the user's token counter moves by
// the delta. The farm side is untouched; the invest endpoint is the one that
// keeps both sides consistent.
func AddFarmInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req AddFarmInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.FarmID = strings.TrimSpace(req.FarmID)
	req.FarmOwner = strings.TrimSpace(req.FarmOwner)
	if req.FarmID == "" || req.FarmOwner == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide farm_id and farm_owner"})
		return
	}
	if req.TokensOwned <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "tokens_owned must be greater than zero"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding farm investment"})
		return
	}

	amount := utils.RoundCurrency(req.InvestmentAmount)

	if err := db.Transaction(func(tx *gorm.DB) error {
		var lockedUser models.User
		if err := database.ForUpdate(tx).First(&lockedUser, user.ID).Error; err != nil {
			return err
		}

		var holding models.FarmToken
		err := database.ForUpdate(tx).
			Where("user_id = ? AND farm_id = ? AND farm_owner = ?", lockedUser.ID, req.FarmID, req.FarmOwner).
			First(&holding).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"tokens_owned":      holding.TokensOwned + req.TokensOwned,
				"investment_amount": utils.RoundCurrency(holding.InvestmentAmount + amount),
			}
			if err := tx.Model(&holding).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = models.FarmToken{
				UserID:           lockedUser.ID,
				FarmID:           req.FarmID,
				FarmOwner:        req.FarmOwner,
				TokensOwned:      req.TokensOwned,
				InvestmentAmount: amount,
				PurchaseDate:     time.Now(),
			}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return tx.Model(&lockedUser).
			UpdateColumn("tokens_owned", gorm.Expr("tokens_owned + ?", req.TokensOwned)).Error
	}); err != nil {
		log.Printf("[users] add farm investment for %s error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding farm investment"})
		return
	}

	db.Where("public_id = ?", id).First(&user)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Farm investment added successfully",
		Data:    map[string]interface{}{"user": &user},
	})
}
