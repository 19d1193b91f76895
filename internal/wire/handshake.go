package wire

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/udisondev/gameworld/internal/constants"
	wcrypto "github.com/udisondev/gameworld/internal/crypto"
)

// Challenge is the server-generated nonce sent at onConnect (§4.1) and
// echoed back by the client inside the RSA-encrypted first frame.
type Challenge struct {
	Timestamp uint32
	Random    byte
}

// NewChallenge mints a fresh challenge from the current wall clock and
// a uniformly random byte.
func NewChallenge() (Challenge, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Challenge{}, fmt.Errorf("wire: generating challenge byte: %w", err)
	}
	return Challenge{Timestamp: uint32(time.Now().Unix()), Random: b[0]}, nil
}

// WriteChallenge sends the unencrypted 0x1F challenge frame.
func (c *Codec) WriteChallenge(ch Challenge) error {
	w := NewWriter()
	w.Byte(constants.OpChallenge)
	w.U32(ch.Timestamp)
	w.Byte(ch.Random)
	return c.WriteFrame(w.Bytes())
}

// Handshake is the parsed content of the client's first frame (§4.1).
type Handshake struct {
	OSTag           uint16
	ProtocolVersion uint16
	Key             wcrypto.SymmetricKey
	AccountName     string
	CharacterName   string
	Password        string
	ExtendedClient  bool
}

// ParseHandshake reads the plaintext first-frame envelope (OS tag,
// protocol version, RSA block) and decrypts+parses the RSA block,
// verifying the echoed challenge. Any failure here is a protocol
// violation (§4.1/§7 tier 1): drop the connection without notification.
func ParseHandshake(payload []byte, rsaKeys *wcrypto.RSAKeyPair, want Challenge) (Handshake, error) {
	r := NewReader(payload)

	var hs Handshake
	var err error
	if hs.OSTag, err = r.U16(); err != nil {
		return Handshake{}, err
	}
	if hs.ProtocolVersion, err = r.U16(); err != nil {
		return Handshake{}, err
	}
	if hs.ProtocolVersion < constants.ClientVersionMin || hs.ProtocolVersion > constants.ClientVersionMax {
		return Handshake{}, fmt.Errorf("wire: unsupported protocol version %d", hs.ProtocolVersion)
	}

	block, err := r.Bytes(constants.RSAEncryptedBlock)
	if err != nil {
		return Handshake{}, err
	}

	plain, err := rsaKeys.Decrypt(block)
	if err != nil {
		return Handshake{}, fmt.Errorf("wire: %w", err)
	}

	br := NewReader(plain)
	for i := range hs.Key {
		word, err := br.U32()
		if err != nil {
			return Handshake{}, err
		}
		hs.Key[i] = word
	}

	if hs.AccountName, err = br.String(); err != nil {
		return Handshake{}, err
	}
	if hs.AccountName == "" {
		return Handshake{}, fmt.Errorf("wire: empty account name")
	}
	if hs.CharacterName, err = br.String(); err != nil {
		return Handshake{}, err
	}
	if hs.Password, err = br.String(); err != nil {
		return Handshake{}, err
	}

	gotTimestamp, err := br.U32()
	if err != nil {
		return Handshake{}, err
	}
	gotRandom, err := br.Byte()
	if err != nil {
		return Handshake{}, err
	}
	if gotTimestamp != want.Timestamp || gotRandom != want.Random {
		return Handshake{}, fmt.Errorf("wire: challenge echo mismatch")
	}

	if tag, err := br.U16(); err == nil && tag != 0 {
		hs.ExtendedClient = true
	}

	return hs, nil
}
