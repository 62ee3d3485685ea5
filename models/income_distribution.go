package models

import "time"

// IncomeDistribution is a one-time payout event splitting a lump sum across
// token holders. DistributedPerToken is frozen at creation using the farm's
// tokens_sold at that moment; later sales do not change it.
type IncomeDistribution struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	FarmID              uint      `gorm:"not null;index" json:"-"`
	DistributionID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"distribution_id"`
	TotalIncome         float64   `gorm:"type:decimal(15,2);not null" json:"total_income"`
	DistributedPerToken float64   `gorm:"not null" json:"distributed_per_token"`
	Description         string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	TransactionHash     string    `gorm:"type:varchar(80)" json:"transaction_hash,omitempty"`
	DistributionDate    time.Time `json:"distribution_date"`
}

func (IncomeDistribution) TableName() string {
	return "income_distributions"
}

// IncomeClaim marks that an investor has collected their share of a
// distribution. The (distribution_id, user_address) unique index makes a
// second claim impossible at the storage layer.
type IncomeClaim struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	DistributionID uint      `gorm:"not null;uniqueIndex:idx_distribution_claim" json:"-"`
	UserAddress    string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_distribution_claim" json:"user_address"`
	Amount         float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

func (IncomeClaim) TableName() string {
	return "income_claims"
}
