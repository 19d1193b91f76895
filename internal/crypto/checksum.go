package crypto

import "hash/adler32"

// FrameChecksum computes the Adler-32 checksum the wire codec appends to
// every frame (§4.1). Adler-32 has no meaningful third-party
// implementation beyond the standard library's — hash/adler32 is the
// canonical one, so we wrap it rather than hand-roll the rolling sum.
func FrameChecksum(payload []byte) uint32 {
	return adler32.Checksum(payload)
}
