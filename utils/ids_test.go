package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGeneratePublicID_Format(t *testing.T) {
	re := regexp.MustCompile(`^farmer_\d{13}_[0-9a-z]{5}$`)
	id := GeneratePublicID("farmer")
	if !re.MatchString(id) {
		t.Fatalf("unexpected public id format: %s", id)
	}
}

func TestGenerateWalletAddress_Format(t *testing.T) {
	re := regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	addr := GenerateWalletAddress()
	if !re.MatchString(addr) {
		t.Fatalf("unexpected wallet address format: %s", addr)
	}
	if addr == GenerateWalletAddress() {
		t.Fatal("expected distinct addresses")
	}
}

func TestGeneratePurchaseAndDistributionIDs(t *testing.T) {
	p := GeneratePurchaseID()
	if !strings.HasPrefix(p, "purchase_") {
		t.Fatalf("unexpected purchase id: %s", p)
	}
	d := GenerateDistributionID()
	if !strings.HasPrefix(d, "dist_") {
		t.Fatalf("unexpected distribution id: %s", d)
	}
	if p == GeneratePurchaseID() || d == GenerateDistributionID() {
		t.Fatal("expected unique ids")
	}
}

func TestRoundCurrency(t *testing.T) {
	cases := map[float64]float64{
		0.1 + 0.2: 0.3,
		2.718:     2.72,
		1.2345:    1.23,
		150.0:     150.0,
	}
	for in, want := range cases {
		if got := RoundCurrency(in); got != want {
			t.Fatalf("RoundCurrency(%v): expected %v, got %v", in, want, got)
		}
	}
}
