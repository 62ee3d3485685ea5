// Package ledger defines the port through which farm lifecycle events are
// anchored on a blockchain. The service only needs transaction hashes back;
// everything else (signing, submission) is behind the Anchor interface.
package ledger

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// OctasPerAPT is the number of octas in one APT, the smallest currency unit
// of the underlying chain.
const OctasPerAPT = 100_000_000

// Anchor records farm lifecycle events on an external ledger and returns the
// resulting transaction hash.
type Anchor interface {
	MintLand(ctx context.Context, owner, landID string) (string, error)
	FractionalizeLand(ctx context.Context, landID string, totalTokens int64, pricePerToken float64) (string, error)
	RecordInvestment(ctx context.Context, farmID, investorAddress string, tokens int64) (string, error)
	RecordDistribution(ctx context.Context, farmID string, totalIncome float64) (string, error)
}

// FromEnv selects the anchor implementation from LEDGER_MODE. Only the
// simulated anchor ships today; a wallet-SDK backed implementation slots in
// here without touching callers.
func FromEnv() (Anchor, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_MODE")))
	switch mode {
	case "", "simulated":
		return NewSimulated(), nil
	default:
		return nil, fmt.Errorf("unsupported LEDGER_MODE %q", mode)
	}
}

// APTToOctas converts an APT amount to octas, truncating sub-octa precision.
func APTToOctas(apt float64) int64 {
	return int64(apt * OctasPerAPT)
}
