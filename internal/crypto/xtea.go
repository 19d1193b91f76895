package crypto

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/xtea"

	"github.com/udisondev/gameworld/internal/constants"
)

// SymmetricKey is the 128-bit XTEA key exchanged inside the RSA handshake
// block, carried on the wire as four little-endian 32-bit words (§4.1).
type SymmetricKey [constants.XTEAKeyWords]uint32

// XTEACipher encrypts and decrypts frame payloads in place, one 8-byte
// block at a time (ECB-style: the protocol never chains blocks). Framing
// and the Adler-32 checksum stay outside its reach — only the payload
// that follows them is ciphered.
//
// golang.org/x/crypto/xtea already implements standard XTEA at the block
// size and key width this protocol uses, so we wrap it instead of
// reimplementing the Feistel rounds by hand.
type XTEACipher struct {
	block *xtea.Cipher
}

// NewXTEACipher builds a cipher from the four key words the client sent.
func NewXTEACipher(key SymmetricKey) (*XTEACipher, error) {
	var raw [16]byte
	for i, word := range key {
		binary.BigEndian.PutUint32(raw[i*4:], word)
	}
	block, err := xtea.NewCipher(raw[:])
	if err != nil {
		return nil, fmt.Errorf("building xtea cipher: %w", err)
	}
	return &XTEACipher{block: block}, nil
}

// Encrypt XTEA-encrypts data in place. len(data) must already be a
// multiple of the XTEA block size; Pad produces such a buffer.
func (c *XTEACipher) Encrypt(data []byte) error {
	return c.transform(data, c.block.Encrypt)
}

// Decrypt XTEA-decrypts data in place.
func (c *XTEACipher) Decrypt(data []byte) error {
	return c.transform(data, c.block.Decrypt)
}

func (c *XTEACipher) transform(data []byte, op func(dst, src []byte)) error {
	if len(data)%constants.XTEABlockSize != 0 {
		return fmt.Errorf("xtea: payload length %d not a multiple of block size %d", len(data), constants.XTEABlockSize)
	}
	for off := 0; off < len(data); off += constants.XTEABlockSize {
		block := data[off : off+constants.XTEABlockSize]
		op(block, block)
	}
	return nil
}

// Pad grows payload to a multiple of the XTEA block size by prefixing it
// with its own true length (so the receiver can trim the zero padding
// after decrypting) and appending zero bytes. This mirrors how the
// legacy client frames encrypted payloads (§4.1).
func Pad(payload []byte) []byte {
	inner := len(payload)
	total := 2 + inner
	if rem := total % constants.XTEABlockSize; rem != 0 {
		total += constants.XTEABlockSize - rem
	}
	out := make([]byte, total)
	binary.LittleEndian.PutUint16(out, uint16(inner))
	copy(out[2:], payload)
	return out
}

// Unpad reverses Pad after decryption, returning the original payload.
func Unpad(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("xtea: padded payload too short")
	}
	inner := int(binary.LittleEndian.Uint16(data))
	if 2+inner > len(data) {
		return nil, fmt.Errorf("xtea: inner length %d exceeds padded size %d", inner, len(data))
	}
	return data[2 : 2+inner], nil
}
