package security

import (
	"testing"
	"time"

	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	token, expireAt, err := Generate(opts, "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !expireAt.After(time.Now().Add(14 * 24 * time.Hour)) {
		t.Fatalf("expireAt too early: %v", expireAt)
	}

	claims, err := Verify(opts, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Fatalf("UserID = %q", claims.UserID())
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := Verify(DefaultOptions([]byte("secret-b")), token); errs.Code(err) != errs.TokenInvalidError {
		t.Fatalf("want TokenInvalid, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	// exp is second-granular; the shortest expressible lifetime is one tick
	// past the current second.
	opts.TTL = time.Millisecond

	token, _, err := Generate(opts, "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := Verify(opts, token); errs.Code(err) != errs.TokenExpiredError {
		t.Fatalf("want TokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := Verify(DefaultOptions([]byte("s")), "not.a.token"); errs.Code(err) != errs.TokenInvalidError {
		t.Fatalf("want TokenInvalid, got %v", err)
	}
}
