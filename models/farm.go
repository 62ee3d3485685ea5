package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FarmStatusActive         = "active"
	FarmStatusFractionalized = "fractionalized"
	FarmStatusSoldOut        = "sold_out"
	FarmStatusInactive       = "inactive"
)

type Farm struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	FarmID string `gorm:"column:farm_id;type:varchar(64);uniqueIndex;not null" json:"farm_id"`
	LandID string `gorm:"column:land_id;type:varchar(64);uniqueIndex;not null" json:"land_id"`
	// Owner is the farmer's wallet address.
	Owner     string  `gorm:"type:varchar(80);index;not null" json:"owner"`
	Name      string  `gorm:"type:varchar(100);not null" json:"name"`
	Location  string  `gorm:"type:varchar(200);not null;index" json:"location"`
	AreaAcres float64 `gorm:"not null" json:"area_acres"`

	TotalTokens   int64   `gorm:"not null" json:"total_tokens"`
	TokensSold    int64   `gorm:"not null;default:0" json:"tokens_sold"`
	PricePerToken float64 `gorm:"type:decimal(15,4);not null" json:"price_per_token"`

	GeoTag         string         `gorm:"type:varchar(120);not null" json:"geo_tag"`
	ProofHash      string         `gorm:"type:varchar(128);not null" json:"proof_hash"`
	ProofObjectKey string         `gorm:"type:varchar(255)" json:"proof_object_key,omitempty"`
	CropType       string         `gorm:"type:varchar(60);default:'Mixed Crops'" json:"crop_type"`
	SoilType       string         `gorm:"type:varchar(60);default:'Fertile Loam'" json:"soil_type"`
	IrrigationType string         `gorm:"type:varchar(60);default:'Sprinkler System'" json:"irrigation_type"`
	Certifications datatypes.JSON `json:"certifications,omitempty"`

	NFTTokenAddress              string `gorm:"type:varchar(80)" json:"nft_token_address,omitempty"`
	FractionalTokenAddress       string `gorm:"type:varchar(80)" json:"fractional_token_address,omitempty"`
	MintTransactionHash          string `gorm:"type:varchar(80)" json:"mint_transaction_hash,omitempty"`
	FractionalizeTransactionHash string `gorm:"type:varchar(80)" json:"fractionalize_transaction_hash,omitempty"`

	Status                 string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	TotalRaised            float64    `gorm:"type:decimal(15,2);not null;default:0" json:"total_raised"`
	AverageYield           float64    `gorm:"default:0" json:"average_yield"`
	LastHarvestDate        *time.Time `json:"last_harvest_date,omitempty"`
	NextHarvestDate        *time.Time `json:"next_harvest_date,omitempty"`
	ROI                    float64    `gorm:"column:roi;default:0" json:"roi"`
	TotalIncomeDistributed float64    `gorm:"type:decimal(15,2);not null;default:0" json:"total_income_distributed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Investors           []FarmInvestor       `gorm:"foreignKey:FarmID;references:ID" json:"investors,omitempty"`
	IncomeDistributions []IncomeDistribution `gorm:"foreignKey:FarmID;references:ID" json:"income_distributions,omitempty"`
}

func (Farm) TableName() string {
	return "farms"
}

func (f *Farm) TokensAvailable() int64 {
	return f.TotalTokens - f.TokensSold
}

func (f *Farm) PercentageSold() float64 {
	if f.TotalTokens == 0 {
		return 0
	}
	return float64(f.TokensSold) / float64(f.TotalTokens) * 100
}

func (f *Farm) TotalValue() float64 {
	return float64(f.TotalTokens) * f.PricePerToken
}

func (f *Farm) CurrentMarketCap() float64 {
	return float64(f.TokensSold) * f.PricePerToken
}

// FarmStats is the aggregate reduction behind /api/users/analytics/stats.
type FarmStats struct {
	TotalFarms             int64   `json:"totalFarms"`
	TotalAcres             float64 `json:"totalAcres"`
	TotalTokens            int64   `json:"totalTokens"`
	TotalTokensSold        int64   `json:"totalTokensSold"`
	TotalValueLocked       float64 `json:"totalValueLocked"`
	AverageTokenPrice      float64 `json:"averageTokenPrice"`
	TotalIncomeDistributed float64 `json:"totalIncomeDistributed"`
}

// GetFarmStats recomputes farm aggregates on each call; nothing is cached.
func GetFarmStats(db *gorm.DB) (FarmStats, error) {
	var stats FarmStats
	err := db.Model(&Farm{}).
		Select(`COUNT(*) AS total_farms,
			COALESCE(SUM(area_acres), 0) AS total_acres,
			COALESCE(SUM(total_tokens), 0) AS total_tokens,
			COALESCE(SUM(tokens_sold), 0) AS total_tokens_sold,
			COALESCE(SUM(total_raised), 0) AS total_value_locked,
			COALESCE(AVG(price_per_token), 0) AS average_token_price,
			COALESCE(SUM(total_income_distributed), 0) AS total_income_distributed`).
		Scan(&stats).Error
	return stats, err
}
