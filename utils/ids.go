package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
const hexDigits = "0123456789abcdef"

// GeneratePublicID builds identifiers like "farmer_1693478400123_x4k2p".
func GeneratePublicID(prefix string) string {
	mu.Lock()
	defer mu.Unlock()
	b := make([]byte, 5)
	for i := range b {
		b[i] = base36[seededRand.Intn(len(base36))]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), string(b))
}

// GenerateWalletAddress returns a placeholder address for users registered
// without a connected wallet.
func GenerateWalletAddress() string {
	mu.Lock()
	defer mu.Unlock()
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexDigits[seededRand.Intn(len(hexDigits))]
	}
	return "0x" + string(b)
}

// GeneratePurchaseID returns a unique identifier for a token purchase record.
func GeneratePurchaseID() string {
	return "purchase_" + uuid.NewString()
}

// GenerateDistributionID returns a unique identifier for an income distribution.
func GenerateDistributionID() string {
	return "dist_" + uuid.NewString()
}
