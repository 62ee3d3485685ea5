package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/middleware"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide username and password"})
		return
	}

	db := database.DB

	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid credentials"})
			return
		}
		log.Printf("[login] DB error fetching user: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during login"})
		return
	}

	if locked, remaining := middleware.IsAccountLocked(user.PublicID); locked {
		mins := int(remaining.Minutes()) + 1
		msg := fmt.Sprintf("Account temporarily locked. Try again in %d minute(s)", mins)
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: msg})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		middleware.RecordFailedLogin(user.PublicID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	middleware.ResetFailedLogin(user.PublicID)

	now := time.Now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		log.Printf("[login] failed to update last_login for %s: %v", user.PublicID, err)
	}
	user.LastLogin = now

	token, err := utils.GenerateToken(user.PublicID, user.Role)
	if err != nil {
		log.Printf("[login] token error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during login"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data:    authPayload(&user, token),
	})
}
