package ledger

import (
	"context"
	"regexp"
	"testing"
)

var hashRe = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestSimulated_HashShape(t *testing.T) {
	s := NewSimulated()
	ctx := context.Background()

	mint, err := s.MintLand(ctx, "0xabc", "LAND-1")
	if err != nil {
		t.Fatalf("MintLand: %v", err)
	}
	if !hashRe.MatchString(mint) {
		t.Fatalf("mint hash has wrong shape: %s", mint)
	}

	frac, err := s.FractionalizeLand(ctx, "LAND-1", 1000, 2.5)
	if err != nil {
		t.Fatalf("FractionalizeLand: %v", err)
	}
	if !hashRe.MatchString(frac) {
		t.Fatalf("fractionalize hash has wrong shape: %s", frac)
	}

	inv, err := s.RecordInvestment(ctx, "FARM-1", "0xdef", 10)
	if err != nil {
		t.Fatalf("RecordInvestment: %v", err)
	}
	dist, err := s.RecordDistribution(ctx, "FARM-1", 300)
	if err != nil {
		t.Fatalf("RecordDistribution: %v", err)
	}
	if !hashRe.MatchString(inv) || !hashRe.MatchString(dist) {
		t.Fatalf("hashes have wrong shape: %s %s", inv, dist)
	}

	if mint == frac || inv == dist || mint == inv {
		t.Fatal("expected distinct hashes per event")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LEDGER_MODE", "")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("default mode: %v", err)
	}
	t.Setenv("LEDGER_MODE", "simulated")
	if _, err := FromEnv(); err != nil {
		t.Fatalf("simulated mode: %v", err)
	}
	t.Setenv("LEDGER_MODE", "mainnet")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}

func TestAPTToOctas(t *testing.T) {
	if got := APTToOctas(1); got != OctasPerAPT {
		t.Fatalf("expected %d, got %d", OctasPerAPT, got)
	}
	if got := APTToOctas(2.5); got != 250_000_000 {
		t.Fatalf("expected 250000000, got %d", got)
	}
}
