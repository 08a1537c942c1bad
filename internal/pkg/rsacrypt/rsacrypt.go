package rsacrypt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
)

var ErrEncrypt = errors.New("credential encryption failed")

// Encryptor encrypts login credentials with the upstream's public key
// before they leave the gateway. It never decrypts; the private key
// lives upstream only.
type Encryptor struct {
	pub *rsa.PublicKey
}

// NewFromPEM parses a PEM-encoded RSA public key. Both PKIX
// ("PUBLIC KEY") and PKCS#1 ("RSA PUBLIC KEY") blocks are accepted.
func NewFromPEM(pemData []byte) (*Encryptor, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in public key data")
	}

	switch block.Type {
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKIX public key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is not RSA")
		}
		return &Encryptor{pub: rsaKey}, nil
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS1 public key: %w", err)
		}
		return &Encryptor{pub: key}, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}

// Encrypt returns the base64-encoded PKCS#1 v1.5 ciphertext of
// plaintext. A failure here is fatal for the login attempt: the
// credential can never be transmitted unencrypted.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if e == nil || e.pub == nil {
		return "", fmt.Errorf("%w: encryptor has no public key", ErrEncrypt)
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, e.pub, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
