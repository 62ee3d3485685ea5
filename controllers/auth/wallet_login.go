package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/middleware"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=4,max=80"`
	Role          string `json:"role" validate:"required"`
	Name          string `json:"name" validate:"max=100"`
}

// POST /api/auth/wallet-login
//
// Logs in an existing wallet user or provisions a new account keyed by the
// wallet address. Wallet users get a random unusable password; they can only
// authenticate through this endpoint.
func WalletLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	addr := strings.TrimSpace(req.WalletAddress)
	role := strings.TrimSpace(req.Role)
	if addr == "" || role == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide wallet address and role"})
		return
	}
	if role != "farmer" && role != "investor" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role must be either farmer or investor"})
		return
	}

	db := database.DB

	var user models.User
	err := db.Where("wallet_address = ?", addr).First(&user).Error
	registered := false
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"wallet_connected": true,
			"last_login":       time.Now(),
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("[wallet-login] failed to update user %s: %v", user.PublicID, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during wallet login"})
			return
		}
		user.WalletConnected = true
		user.LastLogin = time.Now()

	case errors.Is(err, gorm.ErrRecordNotFound):
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = strings.ToUpper(role[:1]) + role[1:] + " User"
		}
		shortAddr := addr
		if len(shortAddr) > 8 {
			shortAddr = shortAddr[:8]
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), 12)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during wallet login"})
			return
		}
		user = models.User{
			PublicID:        utils.GeneratePublicID("wallet_" + role),
			Username:        "wallet_" + strings.ToLower(shortAddr),
			Password:        string(hashed),
			Name:            name,
			Role:            role,
			Avatar:          randomAvatar(),
			Wallet:          addr,
			WalletAddress:   &addr,
			WalletConnected: true,
			Balance:         1000,
			LastLogin:       time.Now(),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("[wallet-login] DB Create user error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during wallet login"})
			return
		}
		registered = true

	default:
		log.Printf("[wallet-login] DB error fetching wallet %s: %v", addr, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during wallet login"})
		return
	}

	token, err := utils.GenerateToken(user.PublicID, user.Role)
	if err != nil {
		log.Printf("[wallet-login] token error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during wallet login"})
		return
	}

	msg := "Wallet login successful"
	if registered {
		msg = "Wallet registered and logged in"
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: msg,
		Data:    authPayload(&user, token),
	})
}
