// Package cryptox implements the cryptographic primitives for custodial
// wallets: ed25519 keypair generation with Solana-style base58 addresses,
// and AES-GCM encryption of private key material at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"

	"github.com/michosso/memepump-auth/internal/common"
)

// keyDerivationSalt keeps argon2 output stable across restarts for the same
// configured master secret. The secret itself is the only confidential input.
var keyDerivationSalt = []byte("memepump-wallet-key-v1")

// Keypair holds a freshly generated wallet keypair. Address is the base58
// encoded ed25519 public key; Secret is the 64-byte private key.
type Keypair struct {
	Address string
	Secret  []byte
}

// GenerateKeypair creates a new ed25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keypair generation error: %w", err)
	}
	return &Keypair{
		Address: base58.Encode(pub),
		Secret:  priv,
	}, nil
}

// DeriveKey stretches the configured master secret into a 32-byte AES key.
func DeriveKey(secret []byte) []byte {
	return argon2.IDKey(secret, keyDerivationSalt, 1, 64*1024, 4, 32)
}

// EncryptSecret encrypts private key material under the given AES key and
// returns a base58 string carrying nonce||ciphertext.
func EncryptSecret(material, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, material, nil)

	return base58.Encode(append(nonce, ciphertext...)), nil
}

// DecryptSecret reverses EncryptSecret.
func DecryptSecret(encoded string, key []byte) ([]byte, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("secret decoding error: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(raw) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("secret too short")
	}
	nonce, ciphertext := raw[:aesgcm.NonceSize()], raw[aesgcm.NonceSize():]

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// WipeByteArray overwrites the contents of b with zeros. Useful for removing
// key material from memory after use. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
