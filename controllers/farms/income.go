package farms

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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DistributeIncomeRequest struct {
	TotalIncome     float64 `json:"total_income"`
	Description     string  `json:"description"`
	TransactionHash string  `json:"transaction_hash"`
}

// POST /api/farms/{farmId}/distribute-income
//
// The per-token rate divides by tokens sold at this moment and is frozen on
// the distribution row. Tokens sold later share in later distributions only.
func (c *Controller) DistributeIncome(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	var req DistributeIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.TotalIncome <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Total income must be greater than zero"})
		return
	}

	var farm models.Farm
	if err := c.db.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		log.Printf("[distribute] farm lookup %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error distributing income"})
		return
	}

	if farm.TokensSold == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "No tokens sold yet, cannot distribute income"})
		return
	}

	txHash := strings.TrimSpace(req.TransactionHash)
	if txHash == "" {
		hash, err := c.anchor.RecordDistribution(r.Context(), farm.FarmID, req.TotalIncome)
		if err != nil {
			log.Printf("[distribute] anchor error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error distributing income"})
			return
		}
		txHash = hash
	}

	errNoTokensSold := errors.New("no_tokens_sold")

	var dist models.IncomeDistribution

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		var lockedFarm models.Farm
		if err := database.ForUpdate(tx).First(&lockedFarm, farm.ID).Error; err != nil {
			return err
		}
		if lockedFarm.TokensSold == 0 {
			return errNoTokensSold
		}

		perToken := req.TotalIncome / float64(lockedFarm.TokensSold)
		dist = models.IncomeDistribution{
			FarmID:              lockedFarm.ID,
			DistributionID:      utils.GenerateDistributionID(),
			TotalIncome:         utils.RoundCurrency(req.TotalIncome),
			DistributedPerToken: perToken,
			Description:         strings.TrimSpace(req.Description),
			TransactionHash:     txHash,
			DistributionDate:    time.Now(),
		}
		if err := tx.Create(&dist).Error; err != nil {
			return err
		}

		totalDistributed := utils.RoundCurrency(lockedFarm.TotalIncomeDistributed + dist.TotalIncome)
		updates := map[string]interface{}{
			"total_income_distributed": totalDistributed,
		}
		if lockedFarm.TotalRaised > 0 {
			updates["roi"] = totalDistributed / lockedFarm.TotalRaised * 100
		}
		return tx.Model(&lockedFarm).Updates(updates).Error
	}); err != nil {
		if errors.Is(err, errNoTokensSold) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "No tokens sold yet, cannot distribute income"})
			return
		}
		log.Printf("[distribute] transaction error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error distributing income"})
		return
	}

	c.db.Preload("IncomeDistributions").Where("id = ?", farm.ID).First(&farm)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Income distributed successfully",
		Data: map[string]interface{}{
			"farm":                  viewOf(&farm),
			"distribution":          &dist,
			"distributed_per_token": dist.DistributedPerToken,
		},
	})
}

// POST /api/farms/distributions/{distributionId}/claim
//
// Claims the caller's share of one distribution. The share is computed from
// the caller's current position on the distribution's farm; a second claim
// for the same distribution is rejected.
func (c *Controller) Claim(w http.ResponseWriter, r *http.Request) {
	distributionID := mux.Vars(r)["distributionId"]

	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var dist models.IncomeDistribution
	if err := c.db.Where("distribution_id = ?", distributionID).First(&dist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Distribution not found"})
			return
		}
		log.Printf("[claim] distribution lookup %s error: %v", distributionID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error claiming income"})
		return
	}

	var user models.User
	if err := c.db.Where("public_id = ?", uid).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
		return
	}

	var (
		errAlreadyClaimed = errors.New("already_claimed")
		errNoTokens       = errors.New("no_tokens")
	)

	var earnings float64

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		var lockedUser models.User
		if err := database.ForUpdate(tx).First(&lockedUser, user.ID).Error; err != nil {
			return err
		}
		addr := lockedUser.EffectiveAddress()

		var existing models.IncomeClaim
		err := tx.Where("distribution_id = ? AND user_address = ?", dist.ID, addr).First(&existing).Error
		if err == nil {
			return errAlreadyClaimed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var position models.FarmInvestor
		err = tx.Where("farm_id = ? AND user_address = ?", dist.FarmID, addr).First(&position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && position.TokensOwned == 0) {
			return errNoTokens
		}
		if err != nil {
			return err
		}

		earnings = utils.RoundCurrency(float64(position.TokensOwned) * dist.DistributedPerToken)

		claim := models.IncomeClaim{
			DistributionID: dist.ID,
			UserAddress:    addr,
			Amount:         earnings,
			ClaimedAt:      time.Now(),
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"balance":        utils.RoundCurrency(lockedUser.Balance + earnings),
			"total_earnings": utils.RoundCurrency(lockedUser.TotalEarnings + earnings),
		}
		if err := tx.Model(&lockedUser).Updates(updates).Error; err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"distribution_id": dist.DistributionID,
			"tokens":          position.TokensOwned,
			"per_token":       dist.DistributedPerToken,
		})
		trx := models.UserTransaction{
			UserID:          lockedUser.ID,
			Type:            models.TxTypeIncomeDistribution,
			Amount:          earnings,
			TransactionHash: dist.TransactionHash,
			Details:         datatypes.JSON(details),
		}
		return tx.Create(&trx).Error
	}); err != nil {
		switch {
		case errors.Is(err, errAlreadyClaimed):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Income already claimed"})
		case errors.Is(err, errNoTokens):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "No tokens owned for this distribution"})
		default:
			log.Printf("[claim] transaction error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error claiming income"})
		}
		return
	}

	c.db.Where("public_id = ?", uid).First(&user)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Income claimed successfully",
		Data: map[string]interface{}{
			"earnings": earnings,
			"user":     &user,
		},
	})
}
