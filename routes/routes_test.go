package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/C-S-V-S-Subrahmanyam/landledger/database"
	"github.com/C-S-V-S-Subrahmanyam/landledger/ledger"
	"github.com/C-S-V-S-Subrahmanyam/landledger/models"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var txHashRe = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

type envelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

type farmResp struct {
	models.Farm
	TokensAvailable  int64   `json:"tokens_available"`
	PercentageSold   float64 `json:"percentage_sold"`
	TotalValue       float64 `json:"total_value"`
	CurrentMarketCap float64 `json:"current_market_cap"`
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	return InitRouter(ledger.NewSimulated())
}

func do(t *testing.T, r *mux.Router, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.50:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if len(rec.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	}
	return rec.Code, env
}

func register(t *testing.T, r *mux.Router, username, role string) (models.User, string) {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "secret123",
		"name":     "Test " + username,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var user models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &user))
	var token string
	require.NoError(t, json.Unmarshal(env.Data["token"], &token))
	require.NotEmpty(t, token)
	return user, token
}

func createFarm(t *testing.T, r *mux.Router, token, farmID, landID, owner string, totalTokens int64, price float64) farmResp {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/farms", token, map[string]interface{}{
		"farm_id":         farmID,
		"land_id":         landID,
		"owner":           owner,
		"name":            "Green Valley " + farmID,
		"location":        "Karnataka, India",
		"area_acres":      12.5,
		"total_tokens":    totalTokens,
		"price_per_token": price,
		"geo_tag":         "12.9716,77.5946",
		"proof_hash":      "QmProofHash" + farmID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var farm farmResp
	require.NoError(t, json.Unmarshal(env.Data["farm"], &farm))
	return farm
}

func invest(t *testing.T, r *mux.Router, token, farmID, address string, tokens int64) (int, envelope) {
	t.Helper()
	return do(t, r, http.MethodPost, "/api/farms/"+farmID+"/invest", token, map[string]interface{}{
		"user_address": address,
		"tokens_owned": tokens,
	})
}

func fetchUser(t *testing.T, r *mux.Router, id string) (models.User, envelope) {
	t.Helper()
	code, env := do(t, r, http.MethodGet, "/api/users/"+id, "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &user))
	return user, env
}

func fetchFarm(t *testing.T, r *mux.Router, farmID string) farmResp {
	t.Helper()
	code, env := do(t, r, http.MethodGet, "/api/farms/"+farmID, "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var farm farmResp
	require.NoError(t, json.Unmarshal(env.Data["farm"], &farm))
	return farm
}

func TestHealthDocsAndNotFound(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "LandLedger Backend API is running")

	req = httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "LandLedger API Documentation")

	code, env := do(t, r, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "API endpoint not found", env.Message)
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	r := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "12345", "name": "Alice", "role": "investor",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Password must be at least 6 characters long", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123", "name": "Alice", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Role must be either farmer or investor", env.Message)

	user, _ := register(t, r, "alice", "investor")
	require.Equal(t, "investor", user.Role)
	require.InDelta(t, 1000, user.Balance, 0.001)
	require.True(t, strings.HasPrefix(user.PublicID, "investor_"))

	code, env = do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret123", "name": "Alice Again", "role": "investor",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Username already exists", env.Message)
}

func TestLoginAndMe(t *testing.T) {
	r := newTestRouter(t)
	user, _ := register(t, r, "bob", "farmer")

	code, env := do(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid credentials", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Login successful", env.Message)
	var token string
	require.NoError(t, json.Unmarshal(env.Data["token"], &token))

	code, env = do(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &me))
	require.Equal(t, user.PublicID, me.PublicID)

	code, env = do(t, r, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid token", env.Message)
}

func TestWalletLogin(t *testing.T) {
	r := newTestRouter(t)
	addr := "0x" + strings.Repeat("ab", 20)

	code, env := do(t, r, http.MethodPost, "/api/auth/wallet-login", "", map[string]string{
		"wallet_address": addr, "role": "investor",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Wallet registered and logged in", env.Message)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &user))
	require.True(t, user.WalletConnected)
	require.True(t, strings.HasPrefix(user.Username, "wallet_"))

	code, env = do(t, r, http.MethodPost, "/api/auth/wallet-login", "", map[string]string{
		"wallet_address": addr, "role": "investor",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Wallet login successful", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/auth/wallet-login", "", map[string]string{
		"wallet_address": addr, "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Role must be either farmer or investor", env.Message)
}

func TestInvestmentLifecycle(t *testing.T) {
	r := newTestRouter(t)

	farmer, farmerToken := register(t, r, "farmer1", "farmer")
	inv1, inv1Token := register(t, r, "investor1", "investor")
	inv2, inv2Token := register(t, r, "investor2", "investor")
	_, inv3Token := register(t, r, "investor3", "investor")

	farm := createFarm(t, r, farmerToken, "FARM-1", "LAND-1", farmer.Wallet, 1000, 2.0)
	require.True(t, txHashRe.MatchString(farm.MintTransactionHash))
	require.Equal(t, models.FarmStatusActive, farm.Status)
	require.Equal(t, int64(1000), farm.TokensAvailable)

	// First purchase: 500 tokens at 2.0 moves the full starting balance.
	code, env := invest(t, r, inv1Token, "FARM-1", inv1.Wallet, 500)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "Investment added successfully", env.Message)
	var hash string
	require.NoError(t, json.Unmarshal(env.Data["transaction_hash"], &hash))
	require.True(t, txHashRe.MatchString(hash))

	inv1After, _ := fetchUser(t, r, inv1.PublicID)
	require.InDelta(t, 0, inv1After.Balance, 0.001)
	require.Equal(t, int64(500), inv1After.TokensOwned)

	farmerAfter, _ := fetchUser(t, r, farmer.PublicID)
	require.InDelta(t, 2000, farmerAfter.Balance, 0.001)

	mid := fetchFarm(t, r, "FARM-1")
	require.Equal(t, int64(500), mid.TokensSold)
	require.Equal(t, models.FarmStatusActive, mid.Status)
	require.InDelta(t, 1000, mid.TotalRaised, 0.001)
	require.InDelta(t, 50, mid.PercentageSold, 0.001)

	// Second purchase sells out the farm.
	code, env = invest(t, r, inv2Token, "FARM-1", inv2.Wallet, 500)
	require.Equal(t, http.StatusOK, code, env.Message)

	soldOut := fetchFarm(t, r, "FARM-1")
	require.Equal(t, int64(1000), soldOut.TokensSold)
	require.Equal(t, models.FarmStatusSoldOut, soldOut.Status)
	require.Equal(t, int64(0), soldOut.TokensAvailable)

	// No oversell once supply is exhausted.
	code, env = invest(t, r, inv3Token, "FARM-1", farmer.Wallet, 1)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Not enough tokens available", env.Message)

	// Sold-out farms leave the marketplace.
	code, env = do(t, r, http.MethodGet, "/api/farms/marketplace/active", "", nil)
	require.Equal(t, http.StatusOK, code)
	var count int
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 0, count)
}

func TestInvestorMergeAndRejections(t *testing.T) {
	r := newTestRouter(t)

	farmer, farmerToken := register(t, r, "farmer2", "farmer")
	inv, invToken := register(t, r, "investor4", "investor")

	createFarm(t, r, farmerToken, "FARM-2", "LAND-2", farmer.Wallet, 1000, 0.5)

	code, env := invest(t, r, invToken, "FARM-2", inv.Wallet, 100)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = invest(t, r, invToken, "FARM-2", inv.Wallet, 100)
	require.Equal(t, http.StatusOK, code, env.Message)

	// Repeat purchases by one address merge into a single position.
	farm := fetchFarm(t, r, "FARM-2")
	require.Len(t, farm.Investors, 1)
	require.Equal(t, int64(200), farm.Investors[0].TokensOwned)
	require.InDelta(t, 100, farm.Investors[0].InvestmentAmount, 0.001)
	require.Equal(t, int64(200), farm.TokensSold)

	userAfter, userEnv := fetchUser(t, r, inv.PublicID)
	require.Equal(t, int64(200), userAfter.TokensOwned)
	require.InDelta(t, 900, userAfter.Balance, 0.001)
	var holdings []models.FarmToken
	require.NoError(t, json.Unmarshal(userEnv.Data["farm_tokens"], &holdings))
	require.Len(t, holdings, 1)
	require.Equal(t, int64(200), holdings[0].TokensOwned)

	// Unknown wallet address cannot invest.
	code, env = invest(t, r, invToken, "FARM-2", "0xdeadbeef", 10)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Investor not found", env.Message)

	// Balance check: 500 tokens on a pricier farm exceeds the remaining 900.
	createFarm(t, r, farmerToken, "FARM-3", "LAND-3", farmer.Wallet, 10000, 2.0)
	code, env = invest(t, r, invToken, "FARM-3", inv.Wallet, 500)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Insufficient balance", env.Message)

	code, env = invest(t, r, invToken, "FARM-2", inv.Wallet, 0)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Token amount must be greater than zero", env.Message)

	code, env = invest(t, r, invToken, "FARM-404", inv.Wallet, 10)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Farm not found", env.Message)
}

func TestDistributeAndClaim(t *testing.T) {
	r := newTestRouter(t)

	farmer, farmerToken := register(t, r, "farmer3", "farmer")
	inv1, inv1Token := register(t, r, "investor5", "investor")
	inv2, inv2Token := register(t, r, "investor6", "investor")
	_, inv3Token := register(t, r, "investor7", "investor")

	createFarm(t, r, farmerToken, "FARM-4", "LAND-4", farmer.Wallet, 2000, 1.0)

	// Nothing sold yet: distribution must be refused.
	code, env := do(t, r, http.MethodPost, "/api/farms/FARM-4/distribute-income", farmerToken, map[string]interface{}{
		"total_income": 300.0,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "No tokens sold yet, cannot distribute income", env.Message)

	code, env = invest(t, r, inv1Token, "FARM-4", inv1.Wallet, 500)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = invest(t, r, inv2Token, "FARM-4", inv2.Wallet, 500)
	require.Equal(t, http.StatusOK, code, env.Message)

	// 300 over 1000 sold tokens freezes a 0.3 per-token rate.
	code, env = do(t, r, http.MethodPost, "/api/farms/FARM-4/distribute-income", farmerToken, map[string]interface{}{
		"total_income": 300.0,
		"description":  "Wheat harvest Q3",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "Income distributed successfully", env.Message)
	var perToken float64
	require.NoError(t, json.Unmarshal(env.Data["distributed_per_token"], &perToken))
	require.InDelta(t, 0.3, perToken, 1e-9)
	var dist models.IncomeDistribution
	require.NoError(t, json.Unmarshal(env.Data["distribution"], &dist))
	require.True(t, strings.HasPrefix(dist.DistributionID, "dist_"))
	require.True(t, txHashRe.MatchString(dist.TransactionHash))

	farm := fetchFarm(t, r, "FARM-4")
	require.InDelta(t, 300, farm.TotalIncomeDistributed, 0.001)
	require.InDelta(t, 30, farm.ROI, 0.001) // 300 / 1000 raised * 100

	// First claim pays 500 tokens * 0.3.
	claimPath := "/api/farms/distributions/" + dist.DistributionID + "/claim"
	code, env = do(t, r, http.MethodPost, claimPath, inv1Token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "Income claimed successfully", env.Message)
	var earnings float64
	require.NoError(t, json.Unmarshal(env.Data["earnings"], &earnings))
	require.InDelta(t, 150, earnings, 0.001)

	inv1After, _ := fetchUser(t, r, inv1.PublicID)
	require.InDelta(t, 650, inv1After.Balance, 0.001) // 500 left after investing + 150
	require.InDelta(t, 150, inv1After.TotalEarnings, 0.001)

	// Second claim of the same distribution is rejected with no state change.
	code, env = do(t, r, http.MethodPost, claimPath, inv1Token, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Income already claimed", env.Message)
	inv1Again, _ := fetchUser(t, r, inv1.PublicID)
	require.InDelta(t, 650, inv1Again.Balance, 0.001)

	// Holders only: an address with no position cannot claim.
	code, env = do(t, r, http.MethodPost, claimPath, inv3Token, nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "No tokens owned for this distribution", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/farms/distributions/dist_missing/claim", inv1Token, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Distribution not found", env.Message)

	// A later distribution is claimable independently.
	code, env = do(t, r, http.MethodPost, "/api/farms/FARM-4/distribute-income", farmerToken, map[string]interface{}{
		"total_income": 100.0,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var dist2 models.IncomeDistribution
	require.NoError(t, json.Unmarshal(env.Data["distribution"], &dist2))

	code, env = do(t, r, http.MethodPost, "/api/farms/distributions/"+dist2.DistributionID+"/claim", inv2Token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data["earnings"], &earnings))
	require.InDelta(t, 50, earnings, 0.001)
}

func TestFarmCrudAndQueries(t *testing.T) {
	r := newTestRouter(t)

	farmer, farmerToken := register(t, r, "farmer4", "farmer")
	other, otherToken := register(t, r, "farmer5", "farmer")

	createFarm(t, r, farmerToken, "FARM-5", "LAND-5", farmer.Wallet, 1000, 1.0)
	createFarm(t, r, otherToken, "FARM-6", "LAND-6", other.Wallet, 500, 3.0)

	// Unique ids are enforced.
	code, env := do(t, r, http.MethodPost, "/api/farms", farmerToken, map[string]interface{}{
		"farm_id": "FARM-5", "land_id": "LAND-X", "owner": farmer.Wallet, "name": "Dup",
		"location": "Nowhere", "area_acres": 1.0, "total_tokens": 10, "price_per_token": 1.0,
		"geo_tag": "0,0", "proof_hash": "QmDup",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Farm ID already exists", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/farms", farmerToken, map[string]interface{}{
		"farm_id": "FARM-X", "land_id": "LAND-5", "owner": farmer.Wallet, "name": "Dup",
		"location": "Nowhere", "area_acres": 1.0, "total_tokens": 10, "price_per_token": 1.0,
		"geo_tag": "0,0", "proof_hash": "QmDup",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Land ID already exists", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/farms", farmerToken, map[string]interface{}{
		"farm_id": "FARM-Y", "owner": farmer.Wallet,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Please provide all required fields", env.Message)

	// Fractionalize transition anchors a hash exactly once.
	code, env = do(t, r, http.MethodPut, "/api/farms/FARM-5", farmerToken, map[string]interface{}{
		"status": "fractionalized",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated farmResp
	require.NoError(t, json.Unmarshal(env.Data["farm"], &updated))
	require.Equal(t, models.FarmStatusFractionalized, updated.Status)
	require.True(t, txHashRe.MatchString(updated.FractionalizeTransactionHash))
	firstFracHash := updated.FractionalizeTransactionHash

	code, env = do(t, r, http.MethodPut, "/api/farms/FARM-5", farmerToken, map[string]interface{}{
		"status": "fractionalized",
	})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data["farm"], &updated))
	require.Equal(t, firstFracHash, updated.FractionalizeTransactionHash)

	code, env = do(t, r, http.MethodPut, "/api/farms/FARM-5", farmerToken, map[string]interface{}{
		"status": "bogus",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid farm status", env.Message)

	// Owner filter and marketplace both see the fractionalized farm.
	code, env = do(t, r, http.MethodGet, "/api/farms/owner/"+farmer.Wallet, "", nil)
	require.Equal(t, http.StatusOK, code)
	var count int
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 1, count)

	code, env = do(t, r, http.MethodGet, "/api/farms/marketplace/active", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 2, count)

	code, env = do(t, r, http.MethodGet, "/api/farms?status=fractionalized", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 1, count)
}

func TestUserEndpoints(t *testing.T) {
	r := newTestRouter(t)

	user, token := register(t, r, "carol", "investor")
	_, otherToken := register(t, r, "dave", "farmer")

	// Self-service profile update.
	code, env := do(t, r, http.MethodPut, "/api/users/"+user.PublicID, token, map[string]interface{}{
		"name":        "Carol Updated",
		"description": "Testing",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &updated))
	require.Equal(t, "Carol Updated", updated.Name)

	// Another user's token cannot touch the profile.
	code, env = do(t, r, http.MethodPut, "/api/users/"+user.PublicID, otherToken, map[string]interface{}{
		"name": "Hijacked",
	})
	require.Equal(t, http.StatusForbidden, code)

	code, env = do(t, r, http.MethodPut, "/api/users/"+user.PublicID, token, map[string]interface{}{
		"balance": -5.0,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Balance cannot be negative", env.Message)

	// Manual ledger entries.
	code, env = do(t, r, http.MethodPost, "/api/users/"+user.PublicID+"/transaction", token, map[string]interface{}{
		"type":             "transfer",
		"amount":           25.0,
		"transaction_hash": "0xabc",
		"details":          map[string]string{"note": "demo"},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "Transaction added successfully", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/users/"+user.PublicID+"/transaction", token, map[string]interface{}{
		"type": "withdrawal",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid transaction type", env.Message)

	code, env = do(t, r, http.MethodGet, "/api/users/"+user.PublicID+"/transactions", "", nil)
	require.Equal(t, http.StatusOK, code)
	var count int
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 1, count)

	// Direct holding record, merged on repeat.
	for i := 0; i < 2; i++ {
		code, env = do(t, r, http.MethodPost, "/api/users/"+user.PublicID+"/farm-investment", token, map[string]interface{}{
			"farm_id":           "FARM-9",
			"farm_owner":        "0xowner",
			"tokens_owned":      int64(10),
			"investment_amount": 20.0,
		})
		require.Equal(t, http.StatusOK, code, env.Message)
	}
	after, userEnv := fetchUser(t, r, user.PublicID)
	require.Equal(t, int64(20), after.TokensOwned)
	var holdings []models.FarmToken
	require.NoError(t, json.Unmarshal(userEnv.Data["farm_tokens"], &holdings))
	require.Len(t, holdings, 1)
	require.Equal(t, int64(20), holdings[0].TokensOwned)
	require.InDelta(t, 40, holdings[0].InvestmentAmount, 0.001)

	// Listing and aggregates.
	code, env = do(t, r, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data["count"], &count))
	require.Equal(t, 2, count)

	code, env = do(t, r, http.MethodGet, "/api/users/analytics/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	var userStats models.UserStats
	require.NoError(t, json.Unmarshal(env.Data["users"], &userStats))
	require.Equal(t, int64(2), userStats.TotalUsers)
	require.Equal(t, int64(1), userStats.TotalFarmers)
	require.Equal(t, int64(1), userStats.TotalInvestors)

	code, env = do(t, r, http.MethodGet, "/api/users/missing_id", "", nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "User not found", env.Message)
}
