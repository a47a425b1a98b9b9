package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}
	salt2, _ := GenerateSalt()
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, DeriveKey("mypassphrase", salt)) {
		t.Error("same passphrase and salt should produce the same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	original := []byte(`{"items":[{"name":"Milk"}]}`)

	sealed, err := Encrypt(original, "hunter2hunter2")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("Milk")) {
		t.Error("ciphertext leaks plaintext")
	}

	opened, err := Decrypt(sealed, "hunter2hunter2")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("decrypted = %q, want %q", opened, original)
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, _ := Encrypt([]byte("x"), "pass")
	b, _ := Encrypt([]byte("x"), "pass")
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("each encryption should use its own salt")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, _ := Encrypt([]byte("secret"), "right")
	if _, err := Decrypt(sealed, "wrong"); !errors.Is(err, ErrBadPassphrase) {
		t.Errorf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestDecryptTruncated(t *testing.T) {
	if _, err := Decrypt([]byte("short"), "pass"); !errors.Is(err, ErrBadPassphrase) {
		t.Errorf("expected ErrBadPassphrase, got %v", err)
	}
}
