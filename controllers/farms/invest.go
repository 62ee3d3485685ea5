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

type InvestRequest struct {
	UserAddress     string `json:"user_address"`
	UserName        string `json:"user_name"`
	TokensOwned     int64  `json:"tokens_owned"`
	TransactionHash string `json:"transaction_hash"`
}

// POST /api/farms/{farmId}/invest
//
// The whole purchase runs in one transaction under row locks: farm supply,
// investor debit, farmer credit, and both holding records move together or
// not at all. The cost is always recomputed from the farm's current price;
// client-supplied amounts are not trusted.
func (c *Controller) Invest(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	var req InvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.UserAddress = strings.TrimSpace(req.UserAddress)
	if req.UserAddress == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide user_address"})
		return
	}
	if req.TokensOwned <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Token amount must be greater than zero"})
		return
	}

	var farm models.Farm
	if err := c.db.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		log.Printf("[invest] farm lookup %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding investment"})
		return
	}

	// Cheap pre-check before anchoring; the authoritative check re-runs
	// under the row lock below.
	if farm.TokensAvailable() < req.TokensOwned {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not enough tokens available"})
		return
	}

	txHash := strings.TrimSpace(req.TransactionHash)
	if txHash == "" {
		hash, err := c.anchor.RecordInvestment(r.Context(), farm.FarmID, req.UserAddress, req.TokensOwned)
		if err != nil {
			log.Printf("[invest] anchor error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding investment"})
			return
		}
		txHash = hash
	}

	var (
		errNotEnoughTokens     = errors.New("not_enough_tokens")
		errInvestorNotFound    = errors.New("investor_not_found")
		errInsufficientBalance = errors.New("insufficient_balance")
	)

	purchaseID := utils.GeneratePurchaseID()
	var cost float64

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		var lockedFarm models.Farm
		if err := database.ForUpdate(tx).First(&lockedFarm, farm.ID).Error; err != nil {
			return err
		}
		if lockedFarm.TokensAvailable() < req.TokensOwned {
			return errNotEnoughTokens
		}

		cost = utils.RoundCurrency(float64(req.TokensOwned) * lockedFarm.PricePerToken)

		var investor models.User
		if err := database.ForUpdate(tx).
			Where("wallet_address = ? OR wallet = ?", req.UserAddress, req.UserAddress).
			First(&investor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errInvestorNotFound
			}
			return err
		}
		if investor.Balance < cost {
			return errInsufficientBalance
		}

		userName := strings.TrimSpace(req.UserName)
		if userName == "" {
			userName = investor.Name
		}

		// Farm-side position, merged per address.
		var position models.FarmInvestor
		err := database.ForUpdate(tx).
			Where("farm_id = ? AND user_address = ?", lockedFarm.ID, req.UserAddress).
			First(&position).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"tokens_owned":      position.TokensOwned + req.TokensOwned,
				"investment_amount": utils.RoundCurrency(position.InvestmentAmount + cost),
				"user_name":         userName,
			}
			if err := tx.Model(&position).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			position = models.FarmInvestor{
				FarmID:           lockedFarm.ID,
				UserAddress:      req.UserAddress,
				UserName:         userName,
				TokensOwned:      req.TokensOwned,
				InvestmentAmount: cost,
				InvestmentDate:   time.Now(),
			}
			if err := tx.Create(&position).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Farm supply accounting and sold-out transition.
		newSold := lockedFarm.TokensSold + req.TokensOwned
		farmUpdates := map[string]interface{}{
			"tokens_sold":  newSold,
			"total_raised": utils.RoundCurrency(lockedFarm.TotalRaised + cost),
		}
		if newSold >= lockedFarm.TotalTokens {
			farmUpdates["status"] = models.FarmStatusSoldOut
		}
		if err := tx.Model(&lockedFarm).Updates(farmUpdates).Error; err != nil {
			return err
		}

		// Investor debit and counters.
		investorUpdates := map[string]interface{}{
			"balance":      utils.RoundCurrency(investor.Balance - cost),
			"tokens_owned": investor.TokensOwned + req.TokensOwned,
		}
		if err := tx.Model(&investor).Updates(investorUpdates).Error; err != nil {
			return err
		}

		// Portfolio-side position, merged per (farm, owner).
		var holding models.FarmToken
		err = database.ForUpdate(tx).
			Where("user_id = ? AND farm_id = ? AND farm_owner = ?", investor.ID, lockedFarm.FarmID, lockedFarm.Owner).
			First(&holding).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"tokens_owned":      holding.TokensOwned + req.TokensOwned,
				"investment_amount": utils.RoundCurrency(holding.InvestmentAmount + cost),
			}
			if err := tx.Model(&holding).Updates(updates).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = models.FarmToken{
				UserID:           investor.ID,
				FarmID:           lockedFarm.FarmID,
				FarmOwner:        lockedFarm.Owner,
				TokensOwned:      req.TokensOwned,
				InvestmentAmount: cost,
				PurchaseDate:     time.Now(),
			}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Farmer credit when an account exists for the owner address. A farm
		// registered under an address with no account still sells; the
		// proceeds are simply not mirrored to a balance.
		var farmer models.User
		err = database.ForUpdate(tx).
			Where("wallet_address = ? OR wallet = ?", lockedFarm.Owner, lockedFarm.Owner).
			First(&farmer).Error
		switch {
		case err == nil:
			if farmer.ID != investor.ID {
				newBalance := utils.RoundCurrency(farmer.Balance + cost)
				if err := tx.Model(&farmer).Update("balance", newBalance).Error; err != nil {
					return err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("[invest] no account for farm owner %s, proceeds not credited", lockedFarm.Owner)
		default:
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"purchase_id":     purchaseID,
			"farm_id":         lockedFarm.FarmID,
			"tokens":          req.TokensOwned,
			"price_per_token": lockedFarm.PricePerToken,
		})
		trx := models.UserTransaction{
			UserID:          investor.ID,
			Type:            models.TxTypeInvest,
			Amount:          cost,
			TransactionHash: txHash,
			Details:         datatypes.JSON(details),
		}
		return tx.Create(&trx).Error
	}); err != nil {
		switch {
		case errors.Is(err, errNotEnoughTokens):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not enough tokens available"})
		case errors.Is(err, errInvestorNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investor not found"})
		case errors.Is(err, errInsufficientBalance):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
		default:
			log.Printf("[invest] transaction error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error adding investment"})
		}
		return
	}

	c.db.Preload("Investors").Where("id = ?", farm.ID).First(&farm)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Investment added successfully",
		Data: map[string]interface{}{
			"farm":             viewOf(&farm),
			"purchase_id":      purchaseID,
			"transaction_hash": txHash,
			"cost":             cost,
		},
	})
}
