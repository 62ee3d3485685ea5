package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var validTxTypes = map[string]struct{}{
	models.TxTypeMint:               {},
	models.TxTypeFractionalize:      {},
	models.TxTypeInvest:             {},
	models.TxTypeIncomeDistribution: {},
	models.TxTypeTransfer:           {},
}

type AddTransactionRequest struct {
	Type            string          `json:"type"`
	Amount          float64         `json:"amount"`
	TransactionHash string          `json:"transaction_hash"`
	Details         json.RawMessage `json:"details"`
}

// POST /api/users/{id}/transaction
func AddTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.Type = strings.TrimSpace(req.Type)
	if _, ok := validTxTypes[req.Type]; !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction type"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding transaction"})
		return
	}

	trx := models.UserTransaction{
		UserID:          user.ID,
		Type:            req.Type,
		Amount:          utils.RoundCurrency(req.Amount),
		TransactionHash: strings.TrimSpace(req.TransactionHash),
	}
	if len(req.Details) > 0 {
		trx.Details = datatypes.JSON(req.Details)
	}

	if err := db.Create(&trx).Error; err != nil {
		log.Printf("[users] add transaction for %s error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding transaction"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Transaction added successfully",
		Data: map[string]interface{}{
			"user":        &user,
			"transaction": &trx,
		},
	})
}

// GET /api/users/{id}/transactions
func ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	db := database.DB

	var user models.User
	if err := db.Where("public_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	query := db.Where("user_id = ?", user.ID)
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		query = query.Where("type = ?", t)
	}

	var rows []models.UserTransaction
	if err := query.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		log.Printf("[users] list transactions for %s error: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"count":        len(rows),
			"transactions": rows,
		},
	})
}
