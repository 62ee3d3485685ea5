package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	PublicID        string    `gorm:"column:public_id;type:varchar(64);uniqueIndex;not null" json:"id"`
	Username        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password        string    `gorm:"type:varchar(255);not null" json:"-"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	Role            string    `gorm:"type:varchar(20);not null;default:'investor'" json:"role"`
	Avatar          string    `gorm:"type:varchar(16)" json:"avatar"`
	Wallet          string    `gorm:"type:varchar(80)" json:"wallet"`
	WalletAddress   *string   `gorm:"type:varchar(80);uniqueIndex" json:"wallet_address,omitempty"`
	WalletConnected bool      `gorm:"default:false" json:"wallet_connected"`
	Balance         float64   `gorm:"type:decimal(15,2);default:1000" json:"balance"`
	LandOwned       int       `gorm:"default:0" json:"land_owned"`
	TokensOwned     int64     `gorm:"default:0" json:"tokens_owned"`
	TotalEarnings   float64   `gorm:"type:decimal(15,2);default:0" json:"total_earnings"`
	Description     string    `gorm:"type:text" json:"description"`
	LastLogin       time.Time `json:"last_login"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// EffectiveAddress is the address investments and claims are recorded under:
// the connected wallet when present, the placeholder wallet otherwise.
func (u *User) EffectiveAddress() string {
	if u.WalletAddress != nil && *u.WalletAddress != "" {
		return *u.WalletAddress
	}
	return u.Wallet
}

// UserStats is the aggregate reduction behind /api/users/analytics/stats.
type UserStats struct {
	TotalUsers       int64   `json:"totalUsers"`
	TotalFarmers     int64   `json:"totalFarmers"`
	TotalInvestors   int64   `json:"totalInvestors"`
	TotalBalance     float64 `json:"totalBalance"`
	TotalLandOwned   int64   `json:"totalLandOwned"`
	TotalTokensOwned int64   `json:"totalTokensOwned"`
}

// GetUserStats recomputes user aggregates on each call; nothing is cached.
func GetUserStats(db *gorm.DB) (UserStats, error) {
	var stats UserStats
	err := db.Model(&User{}).
		Select(`COUNT(*) AS total_users,
			COALESCE(SUM(CASE WHEN role = 'farmer' THEN 1 ELSE 0 END), 0) AS total_farmers,
			COALESCE(SUM(CASE WHEN role = 'investor' THEN 1 ELSE 0 END), 0) AS total_investors,
			COALESCE(SUM(balance), 0) AS total_balance,
			COALESCE(SUM(land_owned), 0) AS total_land_owned,
			COALESCE(SUM(tokens_owned), 0) AS total_tokens_owned`).
		Scan(&stats).Error
	return stats, err
}
