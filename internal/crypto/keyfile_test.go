package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe51296170827936ea5cce4b76994b0f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := Encrypt("0x"+testKeyHex, "hunter2")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt(blob, "hunter2")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != testKeyHex {
		t.Errorf("round trip = %q, want %q", got, testKeyHex)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := Encrypt(testKeyHex, "correct")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(blob, "wrong"); err == nil {
		t.Fatal("Decrypt with wrong password should fail")
	}
}

func TestEncryptRejectsBadInput(t *testing.T) {
	if _, err := Encrypt(testKeyHex, ""); err == nil {
		t.Error("empty password should be rejected")
	}
	if _, err := Encrypt("zz", "pw"); err == nil {
		t.Error("non-hex key should be rejected")
	}
	if _, err := Encrypt("abcd", "pw"); err == nil {
		t.Error("short key should be rejected")
	}
}

func TestLoadRawKey(t *testing.T) {
	key, err := Load(KeySource{RawKey: "0x" + testKeyHex})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if key == nil || key.D.Sign() == 0 {
		t.Fatal("Load returned empty key")
	}
}

func TestLoadFromKeyfile(t *testing.T) {
	blob, err := Encrypt(testKeyHex, "pw")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	path := filepath.Join(t.TempDir(), "wallet.json")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatalf("write keyfile: %v", err)
	}

	key, err := Load(KeySource{KeyfilePath: path, Password: "pw"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if key == nil {
		t.Fatal("Load returned nil key")
	}
}

func TestLoadNoSource(t *testing.T) {
	_, err := Load(KeySource{})
	if err == nil || !strings.Contains(err.Error(), "no private key") {
		t.Errorf("Load with no source: %v", err)
	}
}
