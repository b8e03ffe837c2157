package payment

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	orderID := "ORDER-abc-123"
	statusCode := "200"
	grossAmount := "50000.00"
	serverKey := "SB-Mid-server-secret"

	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	valid := hex.EncodeToString(sum[:])

	tests := []struct {
		name      string
		signature string
		want      bool
	}{
		{"valid signature", valid, true},
		{"tampered signature", valid[:len(valid)-1] + "x", false},
		{"empty signature", "", false},
		{"wrong order", func() string {
			s := sha512.Sum512([]byte("ORDER-other" + statusCode + grossAmount + serverKey))
			return hex.EncodeToString(s[:])
		}(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(orderID, statusCode, grossAmount, serverKey, tt.signature)
			if got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignature_KeyMatters(t *testing.T) {
	sum := sha512.Sum512([]byte("O1" + "200" + "1000.00" + "key-a"))
	sig := hex.EncodeToString(sum[:])
	if VerifySignature("O1", "200", "1000.00", "key-b", sig) {
		t.Error("signature verified with the wrong server key")
	}
}
