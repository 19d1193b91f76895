package wire

import (
	"bytes"
	"testing"

	wcrypto "github.com/udisondev/gameworld/internal/crypto"
)

type loopback struct {
	buf bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.buf.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.buf.Write(p) }

func TestFrameRoundTripPlaintext(t *testing.T) {
	conn := &loopback{}
	codec := NewCodec(conn)

	payload := []byte{0x96, 0x01, 'h', 'i'}
	if err := codec.WriteFrame(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := codec.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %x want %x", got, payload)
	}
}

func TestFrameRoundTripEncrypted(t *testing.T) {
	conn := &loopback{}
	codec := NewCodec(conn)

	cipher, err := wcrypto.NewXTEACipher(wcrypto.SymmetricKey{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	codec.EnableCipher(cipher)

	payload := []byte{0x64, 0x03, 1, 3, 5}
	if err := codec.WriteFrame(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := codec.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %x want %x", got, payload)
	}
}

func TestFrameChecksumMismatchRejected(t *testing.T) {
	conn := &loopback{}
	codec := NewCodec(conn)

	if err := codec.WriteFrame([]byte{0x1E}); err != nil {
		t.Fatalf("write: %v", err)
	}

	corrupt := conn.buf.Bytes()
	corrupt[len(corrupt)-1] ^= 0xFF

	conn2 := &loopback{}
	conn2.buf.Write(corrupt)
	codec2 := NewCodec(conn2)
	if _, err := codec2.ReadFrame(); err == nil {
		t.Fatalf("expected checksum mismatch to be rejected")
	}
}

func TestMessageReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Byte(0x42)
	w.U16(1234)
	w.U32(987654321)
	w.String("hello")

	r := NewReader(w.Bytes())
	b, _ := r.Byte()
	u16, _ := r.U16()
	u32, _ := r.U32()
	s, _ := r.String()

	if b != 0x42 || u16 != 1234 || u32 != 987654321 || s != "hello" {
		t.Fatalf("mismatch: %v %v %v %q", b, u16, u32, s)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestReaderOverreadReturnsErrShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.U32(); err != ErrShortBuffer {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}
