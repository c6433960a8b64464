package accounts

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", 1000)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	parts := strings.Split(hash, "$")
	if len(parts) != 4 || parts[0] != "pbkdf2_sha256" || parts[1] != "1000" || len(parts[2]) != 32 {
		t.Fatalf("unexpected encoding %q", hash)
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPassword("correct horsE", hash) {
		t.Fatalf("expected mismatch")
	}

	other, _ := HashPassword("correct horse", 1000)
	if other == hash {
		t.Fatalf("expected distinct salts")
	}
}

func TestCheckPasswordRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{"", "plain", "md5$1$00$00", "pbkdf2_sha256$x$00$00", "pbkdf2_sha256$10$zz$00"} {
		if CheckPassword("secret123", encoded) {
			t.Fatalf("expected %q to be rejected", encoded)
		}
	}
}

func TestHashPasswordDefaultIterations(t *testing.T) {
	if got := encodeHash("pw", "00112233445566778899aabbccddeeff", 1); !strings.HasPrefix(got, "pbkdf2_sha256$1$") {
		t.Fatalf("unexpected prefix %q", got)
	}
	if passwordIterations != 390000 {
		t.Fatalf("unexpected default work factor %d", passwordIterations)
	}
}
