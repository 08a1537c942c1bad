package rsacrypt_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"strings"
	"testing"

	"github.com/highway905/awi-gateway/internal/pkg/rsacrypt"
)

func testKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}

	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, pemData
}

func TestEncryptRoundTrip(t *testing.T) {
	key, pemData := testKeyPair(t)

	enc, err := rsacrypt.NewFromPEM(pemData)
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	ciphertext, err := enc.Encrypt("user@warehouse.example")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("ciphertext is not base64: %v", err)
	}

	plaintext, err := rsa.DecryptPKCS1v15(nil, key, raw)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plaintext) != "user@warehouse.example" {
		t.Fatalf("round trip mismatch: got %q", plaintext)
	}
}

func TestEncryptDistinctCiphertexts(t *testing.T) {
	_, pemData := testKeyPair(t)

	enc, err := rsacrypt.NewFromPEM(pemData)
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	a, err := enc.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := enc.Encrypt("secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Fatalf("PKCS1v15 padding should randomize ciphertexts")
	}
}

func TestNewFromPEMRejectsGarbage(t *testing.T) {
	if _, err := rsacrypt.NewFromPEM([]byte("not a key")); err == nil {
		t.Fatalf("expected error for non-PEM input")
	}
}

func TestEncryptOversizedInput(t *testing.T) {
	_, pemData := testKeyPair(t)

	enc, err := rsacrypt.NewFromPEM(pemData)
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	// PKCS1v15 caps plaintext at k-11 bytes; a 2048-bit key allows 245.
	if _, err := enc.Encrypt(strings.Repeat("x", 300)); !errors.Is(err, rsacrypt.ErrEncrypt) {
		t.Fatalf("expected ErrEncrypt for oversized plaintext, got %v", err)
	}
}
