package auth

import (
	"testing"
	"time"
)

func TestSignAndParseJWT(t *testing.T) {
	tok, err := SignJWT(42, "01JTESTTOKENID0000000000000", "s3cret", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := ParseJWT(tok, "s3cret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != 42 || c.ID != "01JTESTTOKENID0000000000000" {
		t.Fatalf("unexpected claims uid=%d jti=%q", c.UserID, c.ID)
	}
}

func TestParseJWT_Expired(t *testing.T) {
	tok, err := SignJWT(42, "jti", "s3cret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(tok, "s3cret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(h, "correct horse") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(h, "battery staple") {
		t.Fatal("expected mismatch")
	}
}
