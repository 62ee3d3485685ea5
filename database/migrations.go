package database

import (
	"gorm.io/gorm"

	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
)

// Migrate runs AutoMigrate for every persisted model. The ordering matters
// only for readability; GORM resolves foreign keys per table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Farm{},
		&models.FarmInvestor{},
		&models.IncomeDistribution{},
		&models.IncomeClaim{},
		&models.FarmToken{},
		&models.UserTransaction{},
	)
}
