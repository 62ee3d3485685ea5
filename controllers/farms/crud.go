package farms

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GET /api/farms
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	query := c.db.Model(&models.Farm{}).Order("created_at DESC")

	if owner := strings.TrimSpace(r.URL.Query().Get("owner")); owner != "" {
		query = query.Where("owner = ?", owner)
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var rows []models.Farm
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		log.Printf("[farms] list error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting farms"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"count": len(rows),
			"farms": viewsOf(rows),
		},
	})
}

// GET /api/farms/{farmId}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	var farm models.Farm
	if err := c.db.Preload("Investors").Preload("IncomeDistributions").
		Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		log.Printf("[farms] get %s error: %v", farmID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting farm"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"farm": viewOf(&farm)},
	})
}

type CreateFarmRequest struct {
	FarmID              string   `json:"farm_id"`
	Owner               string   `json:"owner"`
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	AreaAcres           float64  `json:"area_acres"`
	TotalTokens         int64    `json:"total_tokens"`
	PricePerToken       float64  `json:"price_per_token"`
	LandID              string   `json:"land_id"`
	GeoTag              string   `json:"geo_tag"`
	ProofHash           string   `json:"proof_hash"`
	CropType            string   `json:"crop_type"`
	SoilType            string   `json:"soil_type"`
	IrrigationType      string   `json:"irrigation_type"`
	Certifications      []string `json:"certifications"`
	NFTTokenAddress     string   `json:"nft_token_address"`
	MintTransactionHash string   `json:"mint_transaction_hash"`
}

// POST /api/farms
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	req.FarmID = strings.TrimSpace(req.FarmID)
	req.LandID = strings.TrimSpace(req.LandID)
	req.Owner = strings.TrimSpace(req.Owner)

	if req.FarmID == "" || req.Owner == "" || req.Name == "" || req.Location == "" ||
		req.AreaAcres <= 0 || req.TotalTokens <= 0 || req.PricePerToken <= 0 ||
		req.LandID == "" || req.GeoTag == "" || req.ProofHash == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide all required fields"})
		return
	}

	var existing models.Farm
	if err := c.db.Where("farm_id = ?", req.FarmID).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Farm ID already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[farms] create check farm_id error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error creating farm"})
		return
	}
	if err := c.db.Where("land_id = ?", req.LandID).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Land ID already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[farms] create check land_id error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error creating farm"})
		return
	}

	mintHash := strings.TrimSpace(req.MintTransactionHash)
	if mintHash == "" {
		hash, err := c.anchor.MintLand(r.Context(), req.Owner, req.LandID)
		if err != nil {
			log.Printf("[farms] mint anchor error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error creating farm"})
			return
		}
		mintHash = hash
	}
	nftAddr := strings.TrimSpace(req.NFTTokenAddress)
	if nftAddr == "" {
		nftAddr = utils.GenerateWalletAddress()
	}

	farm := models.Farm{
		FarmID:              req.FarmID,
		LandID:              req.LandID,
		Owner:               req.Owner,
		Name:                strings.TrimSpace(req.Name),
		Location:            strings.TrimSpace(req.Location),
		AreaAcres:           req.AreaAcres,
		TotalTokens:         req.TotalTokens,
		PricePerToken:       req.PricePerToken,
		GeoTag:              strings.TrimSpace(req.GeoTag),
		ProofHash:           strings.TrimSpace(req.ProofHash),
		NFTTokenAddress:     nftAddr,
		MintTransactionHash: mintHash,
		Status:              models.FarmStatusActive,
	}
	if req.CropType != "" {
		farm.CropType = req.CropType
	}
	if req.SoilType != "" {
		farm.SoilType = req.SoilType
	}
	if req.IrrigationType != "" {
		farm.IrrigationType = req.IrrigationType
	}
	if len(req.Certifications) > 0 {
		if raw, err := json.Marshal(req.Certifications); err == nil {
			farm.Certifications = datatypes.JSON(raw)
		}
	}

	if err := c.db.Create(&farm).Error; err != nil {
		log.Printf("[farms] create error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error creating farm"})
		return
	}

	// Bookkeeping on the owner account when one exists for this address.
	var owner models.User
	if err := c.db.Where("wallet_address = ? OR wallet = ?", farm.Owner, farm.Owner).First(&owner).Error; err == nil {
		if err := c.db.Model(&owner).UpdateColumn("land_owned", gorm.Expr("land_owned + 1")).Error; err != nil {
			log.Printf("[farms] create: land_owned update for %s failed: %v", owner.PublicID, err)
		}
		details, _ := json.Marshal(map[string]interface{}{"farm_id": farm.FarmID, "land_id": farm.LandID})
		trx := models.UserTransaction{
			UserID:          owner.ID,
			Type:            models.TxTypeMint,
			Amount:          0,
			TransactionHash: mintHash,
			Details:         datatypes.JSON(details),
		}
		if err := c.db.Create(&trx).Error; err != nil {
			log.Printf("[farms] create: mint transaction record failed: %v", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[farms] create: owner lookup failed: %v", err)
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Farm created successfully",
		Data:    map[string]interface{}{"farm": viewOf(&farm)},
	})
}

type UpdateFarmRequest struct {
	Name                   *string  `json:"name"`
	Location               *string  `json:"location"`
	AreaAcres              *float64 `json:"area_acres"`
	PricePerToken          *float64 `json:"price_per_token"`
	CropType               *string  `json:"crop_type"`
	SoilType               *string  `json:"soil_type"`
	IrrigationType         *string  `json:"irrigation_type"`
	Status                 *string  `json:"status"`
	AverageYield           *float64 `json:"average_yield"`
	FractionalTokenAddress *string  `json:"fractional_token_address"`
}

var validFarmStatuses = map[string]struct{}{
	models.FarmStatusActive:         {},
	models.FarmStatusFractionalized: {},
	models.FarmStatusSoldOut:        {},
	models.FarmStatusInactive:       {},
}

// PUT /api/farms/{farmId}
//
// Partial update of mutable fields. Token accounting fields are deliberately
// not updatable here; invest and distribute-income own those.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	farmID := mux.Vars(r)["farmId"]

	var req UpdateFarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}

	var farm models.Farm
	if err := c.db.Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Farm not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error updating farm"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.AreaAcres != nil {
		updates["area_acres"] = *req.AreaAcres
	}
	if req.PricePerToken != nil {
		if *req.PricePerToken <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Price per token must be greater than zero"})
			return
		}
		updates["price_per_token"] = *req.PricePerToken
	}
	if req.CropType != nil {
		updates["crop_type"] = *req.CropType
	}
	if req.SoilType != nil {
		updates["soil_type"] = *req.SoilType
	}
	if req.IrrigationType != nil {
		updates["irrigation_type"] = *req.IrrigationType
	}
	if req.AverageYield != nil {
		updates["average_yield"] = *req.AverageYield
	}
	if req.FractionalTokenAddress != nil {
		updates["fractional_token_address"] = strings.TrimSpace(*req.FractionalTokenAddress)
	}
	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if _, ok := validFarmStatuses[status]; !ok {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid farm status"})
			return
		}
		updates["status"] = status

		// First transition to fractionalized anchors the token split.
		if status == models.FarmStatusFractionalized && farm.FractionalizeTransactionHash == "" {
			hash, err := c.anchor.FractionalizeLand(r.Context(), farm.LandID, farm.TotalTokens, farm.PricePerToken)
			if err != nil {
				log.Printf("[farms] fractionalize anchor error: %v", err)
				utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error updating farm"})
				return
			}
			updates["fractionalize_transaction_hash"] = hash
			if farm.FractionalTokenAddress == "" && req.FractionalTokenAddress == nil {
				updates["fractional_token_address"] = utils.GenerateWalletAddress()
			}
		}
	}

	if len(updates) > 0 {
		if err := c.db.Model(&farm).Updates(updates).Error; err != nil {
			log.Printf("[farms] update %s error: %v", farmID, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error updating farm"})
			return
		}
		c.db.Where("farm_id = ?", farmID).First(&farm)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Farm updated successfully",
		Data:    map[string]interface{}{"farm": viewOf(&farm)},
	})
}

// GET /api/farms/owner/{ownerAddress}
func (c *Controller) ByOwner(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["ownerAddress"]

	var rows []models.Farm
	if err := c.db.Where("owner = ?", owner).Order("created_at DESC").Find(&rows).Error; err != nil {
		log.Printf("[farms] by owner %s error: %v", owner, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting farms by owner"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"count": len(rows),
			"farms": viewsOf(rows),
		},
	})
}

// GET /api/farms/marketplace/active
func (c *Controller) Marketplace(w http.ResponseWriter, r *http.Request) {
	var rows []models.Farm
	err := c.db.
		Where("status IN ?", []string{models.FarmStatusActive, models.FarmStatusFractionalized}).
		Where("tokens_sold < total_tokens").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		log.Printf("[farms] marketplace error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting marketplace farms"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"count": len(rows),
			"farms": viewsOf(rows),
		},
	})
}
