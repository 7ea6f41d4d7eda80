package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, errGenerate := GenerateAdminToken("secret", "admin", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	claims, errParse := ParseAdminToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.Username != "admin" {
		t.Fatalf("unexpected username %q", claims.Username)
	}
	if _, errParse = ParseAdminToken("other", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", errParse)
	}
}

func TestAdminTokenExpired(t *testing.T) {
	token, errGenerate := GenerateAdminToken("secret", "admin", -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate: %v", errGenerate)
	}
	if _, errParse := ParseAdminToken("secret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestAdminTokenRequiresSecret(t *testing.T) {
	if _, errGenerate := GenerateAdminToken(" ", "admin", time.Hour); !errors.Is(errGenerate, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", errGenerate)
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, errHash := HashPassword("correct horse")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") || CheckPassword("", "correct horse") {
		t.Fatalf("unexpected match")
	}
	if _, errHash = HashPassword(strings.Repeat("x", 73)); !errors.Is(errHash, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", errHash)
	}
}

func TestGenerateReferralCode(t *testing.T) {
	code, errCode := GenerateReferralCode("ch")
	if errCode != nil {
		t.Fatalf("code: %v", errCode)
	}
	if !strings.HasPrefix(code, "CH-") || len(code) != len("CH-")+8 {
		t.Fatalf("unexpected code %q", code)
	}
	for _, r := range strings.TrimPrefix(code, "CH-") {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected rune %q in %q", r, code)
		}
	}
	if _, errCode = GenerateCode(0); errCode == nil {
		t.Fatalf("expected error for zero length")
	}
}
