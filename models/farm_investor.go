package models

import "time"

// FarmInvestor is one investor's position in a farm. Repeat purchases by the
// same address merge into the same row; the (farm_id, user_address) unique
// index backs the upsert.
type FarmInvestor struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	FarmID           uint      `gorm:"not null;uniqueIndex:idx_farm_investor" json:"-"`
	UserAddress      string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_farm_investor" json:"user_address"`
	UserName         string    `gorm:"type:varchar(100)" json:"user_name"`
	TokensOwned      int64     `gorm:"not null;default:0" json:"tokens_owned"`
	InvestmentAmount float64   `gorm:"type:decimal(15,2);not null;default:0" json:"investment_amount"`
	InvestmentDate   time.Time `json:"investment_date"`
	UpdatedAt        time.Time `json:"-"`
}

func (FarmInvestor) TableName() string {
	return "farm_investors"
}
