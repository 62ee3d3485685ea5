package auth

import (
	"errors"
	"log"
	"math/rand"
	"net/http"
	"strings"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/middleware"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"
	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var avatars = []string{"👨‍🌾", "👩‍🌾", "👨‍💼", "👩‍💼", "🧑‍🚀", "👨‍🔬", "👩‍🔬"}

func randomAvatar() string {
	return avatars[rand.Intn(len(avatars))]
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required"`
}

// authPayload is the data block returned by register, login, and wallet-login.
func authPayload(user *models.User, token string) map[string]interface{} {
	return map[string]interface{}{
		"user":  user,
		"token": token,
	}
}

// POST /api/auth/register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)

	if req.Username == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Please provide username, password, name, and role"})
		return
	}
	if len(req.Password) < 6 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Password must be at least 6 characters long"})
		return
	}
	if req.Role != "farmer" && req.Role != "investor" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role must be either farmer or investor"})
		return
	}

	db := database.DB

	var existing models.User
	if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Username already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[register] DB error checking username: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during registration"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during registration"})
		return
	}

	newUser := models.User{
		PublicID: utils.GeneratePublicID(req.Role),
		Username: req.Username,
		Password: string(hashed),
		Name:     req.Name,
		Role:     req.Role,
		Avatar:   randomAvatar(),
		Wallet:   utils.GenerateWalletAddress(),
		Balance:  1000,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("[register] DB Create user error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during registration"})
		return
	}

	token, err := utils.GenerateToken(newUser.PublicID, newUser.Role)
	if err != nil {
		log.Printf("[register] token error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error during registration"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    authPayload(&newUser, token),
	})
}
