package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
)

// Simulated is an Anchor that fabricates transaction hashes without talking
// to any chain. It is the demo-mode implementation and the test double.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

// txHash returns a random 32-byte hash in 0x-prefixed hex form, the same
// shape a real chain submission would produce.
func (s *Simulated) txHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

func (s *Simulated) MintLand(ctx context.Context, owner, landID string) (string, error) {
	hash, err := s.txHash()
	if err != nil {
		return "", err
	}
	log.Printf("[ledger] simulated mint: owner=%s land=%s tx=%s", owner, landID, hash)
	return hash, nil
}

func (s *Simulated) FractionalizeLand(ctx context.Context, landID string, totalTokens int64, pricePerToken float64) (string, error) {
	hash, err := s.txHash()
	if err != nil {
		return "", err
	}
	log.Printf("[ledger] simulated fractionalize: land=%s tokens=%d price_octas=%d tx=%s",
		landID, totalTokens, APTToOctas(pricePerToken), hash)
	return hash, nil
}

func (s *Simulated) RecordInvestment(ctx context.Context, farmID, investorAddress string, tokens int64) (string, error) {
	hash, err := s.txHash()
	if err != nil {
		return "", err
	}
	log.Printf("[ledger] simulated investment: farm=%s investor=%s tokens=%d tx=%s",
		farmID, investorAddress, tokens, hash)
	return hash, nil
}

func (s *Simulated) RecordDistribution(ctx context.Context, farmID string, totalIncome float64) (string, error) {
	hash, err := s.txHash()
	if err != nil {
		return "", err
	}
	log.Printf("[ledger] simulated distribution: farm=%s income=%.2f tx=%s", farmID, totalIncome, hash)
	return hash, nil
}
