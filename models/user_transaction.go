package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TxTypeMint               = "mint"
	TxTypeFractionalize      = "fractionalize"
	TxTypeInvest             = "invest"
	TxTypeIncomeDistribution = "income_distribution"
	TxTypeTransfer           = "transfer"
)

// UserTransaction is one entry in a user's activity history.
type UserTransaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"-"`
	Type            string         `gorm:"type:varchar(30);not null" json:"type"`
	Amount          float64        `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	TransactionHash string         `gorm:"type:varchar(80)" json:"transaction_hash,omitempty"`
	Details         datatypes.JSON `json:"details,omitempty"`
	CreatedAt       time.Time      `json:"timestamp"`
}

func (UserTransaction) TableName() string {
	return "user_transactions"
}
