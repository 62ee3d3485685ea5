package farms

import (
	"github.com/C-S-V-S-Subrahmanyam/landledger/ledger"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"

	"gorm.io/gorm"
)

// Controller bundles farm endpoints with their dependencies. The ledger
// anchor is injected so tests and future chain backends can swap it.
type Controller struct {
	db     *gorm.DB
	anchor ledger.Anchor
}

func NewController(db *gorm.DB, anchor ledger.Anchor) *Controller {
	return &Controller{db: db, anchor: anchor}
}

// farmView adds the derived fields the stored model does not carry.
type farmView struct {
	*models.Farm
	TokensAvailable  int64   `json:"tokens_available"`
	PercentageSold   float64 `json:"percentage_sold"`
	TotalValue       float64 `json:"total_value"`
	CurrentMarketCap float64 `json:"current_market_cap"`
}

func viewOf(f *models.Farm) farmView {
	return farmView{
		Farm:             f,
		TokensAvailable:  f.TokensAvailable(),
		PercentageSold:   f.PercentageSold(),
		TotalValue:       f.TotalValue(),
		CurrentMarketCap: f.CurrentMarketCap(),
	}
}

func viewsOf(rows []models.Farm) []farmView {
	out := make([]farmView, 0, len(rows))
	for i := range rows {
		out = append(out, viewOf(&rows[i]))
	}
	return out
}
