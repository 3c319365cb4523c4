package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("expected mismatched password to fail")
	}
	if CheckPassword("not-a-hash", "anything") {
		t.Error("expected malformed hash to fail")
	}
}
