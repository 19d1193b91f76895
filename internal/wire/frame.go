package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/udisondev/gameworld/internal/constants"
	wcrypto "github.com/udisondev/gameworld/internal/crypto"
)

// Codec reads and writes frames on one connection (§4.1). It starts
// plaintext; EnableCipher switches payload encryption on from the next
// frame onward, exactly once, right after the handshake completes.
type Codec struct {
	conn   io.ReadWriter
	cipher *wcrypto.XTEACipher
}

// NewCodec wraps conn. Frames are plaintext until EnableCipher is called.
func NewCodec(conn io.ReadWriter) *Codec {
	return &Codec{conn: conn}
}

// EnableCipher turns on symmetric payload encryption for every frame
// from this point on, using the key carried in the handshake block.
func (c *Codec) EnableCipher(cipher *wcrypto.XTEACipher) {
	c.cipher = cipher
}

// ReadFrame reads one frame, verifies its checksum and decrypts the
// payload if a cipher is active, returning the plaintext payload.
// Any framing violation (declared length too large, checksum mismatch,
// truncated read) is a protocol violation per §4.1/§7 tier 1 — the
// caller should disconnect without notification.
func (c *Codec) ReadFrame() ([]byte, error) {
	var header [constants.FrameHeaderSize]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, fmt.Errorf("wire: reading frame header: %w", err)
	}

	length := binary.LittleEndian.Uint16(header[:constants.FrameLengthSize])
	wantChecksum := binary.LittleEndian.Uint32(header[constants.FrameLengthSize:])

	if int(length) < constants.FrameChecksumSize || int(length) > constants.MaxFrameLength {
		return nil, fmt.Errorf("wire: declared frame length %d out of range", length)
	}

	payloadLen := int(length) - constants.FrameChecksumSize
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return nil, fmt.Errorf("wire: reading frame payload: %w", err)
		}
	}

	if wcrypto.FrameChecksum(payload) != wantChecksum {
		return nil, fmt.Errorf("wire: checksum mismatch")
	}

	if c.cipher != nil && payloadLen > 0 {
		if err := c.cipher.Decrypt(payload); err != nil {
			return nil, fmt.Errorf("wire: decrypting payload: %w", err)
		}
		payload, err := wcrypto.Unpad(payload)
		if err != nil {
			return nil, fmt.Errorf("wire: unpadding payload: %w", err)
		}
		return payload, nil
	}

	return payload, nil
}

// WriteFrame encrypts (if a cipher is active) and sends payload as one
// frame: length header, Adler-32 checksum, then payload — the checksum
// is computed after the full payload (including any cipher padding)
// is assembled, then the reserved header slot is filled in (§4.1).
func (c *Codec) WriteFrame(payload []byte) error {
	body := payload
	if c.cipher != nil {
		body = wcrypto.Pad(payload)
		if err := c.cipher.Encrypt(body); err != nil {
			return fmt.Errorf("wire: encrypting payload: %w", err)
		}
	}

	total := constants.FrameHeaderSize + len(body)
	if total > constants.MaxFrameLength+constants.FrameLengthSize {
		return fmt.Errorf("wire: outbound frame too large (%d bytes)", total)
	}

	buf := make([]byte, total)
	binary.LittleEndian.PutUint16(buf, uint16(len(body)+constants.FrameChecksumSize))
	binary.LittleEndian.PutUint32(buf[constants.FrameLengthSize:], wcrypto.FrameChecksum(body))
	copy(buf[constants.FrameHeaderSize:], body)

	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("wire: writing frame: %w", err)
	}
	return nil
}
