package users

import (
	"log"
	"net/http"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"
)

// GET /api/users/analytics/stats
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	userStats, err := models.GetUserStats(db)
	if err != nil {
		log.Printf("[stats] user aggregate error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting statistics"})
		return
	}

	farmStats, err := models.GetFarmStats(db)
	if err != nil {
		log.Printf("[stats] farm aggregate error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error getting statistics"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users":       userStats,
			"farms":       farmStats,
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
