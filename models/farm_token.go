package models

import "time"

// FarmToken is a user's per-farm holding, the portfolio view of the same
// position FarmInvestor records on the farm side. Both are written in the
// same transaction during an investment.
type FarmToken struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_user_farm" json:"-"`
	FarmID           string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_farm" json:"farm_id"`
	FarmOwner        string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_user_farm" json:"farm_owner"`
	TokensOwned      int64     `gorm:"not null;default:0" json:"tokens_owned"`
	InvestmentAmount float64   `gorm:"type:decimal(15,2);not null;default:0" json:"investment_amount"`
	PurchaseDate     time.Time `json:"purchase_date"`
	UpdatedAt        time.Time `json:"-"`
}

func (FarmToken) TableName() string {
	return "farm_tokens"
}
