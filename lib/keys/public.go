package keys

import (
	"encoding/hex"
)

// PublicKey holds a 32-byte x-only secp256k1 public key and its encodings.
// It may be constructed directly for verify-only use, or derived from a
// SecretKey. Immutable once constructed.
type PublicKey struct {
	raw    [KeySize]byte
	bech32 string
}

// PublicKeyFromBytes constructs a PublicKey from exactly 32 raw bytes.
func PublicKeyFromBytes(raw []byte) (*PublicKey, error) {
	if len(raw) != KeySize {
		log.WithField("key_length", len(raw)).Error("public key material has wrong length")
		return nil, ErrInvalidKeyLength
	}
	pk := new(PublicKey)
	copy(pk.raw[:], raw)
	encoded, err := encodeBech32(PublicKeyPrefix, pk.raw[:])
	if err != nil {
		return nil, err
	}
	pk.bech32 = encoded
	return pk, nil
}

// PublicKeyFromHex constructs a PublicKey from a 64-character hex string.
func PublicKeyFromHex(h string) (*PublicKey, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		log.WithError(err).Warn("public key hex decode failed")
		return nil, ErrInvalidKeyEncoding
	}
	return PublicKeyFromBytes(raw)
}

// PublicKeyFromBech32 constructs a PublicKey from its checksummed npub encoding.
func PublicKeyFromBech32(encoded string) (*PublicKey, error) {
	raw, err := decodeBech32(encoded, PublicKeyPrefix)
	if err != nil {
		return nil, err
	}
	return PublicKeyFromBytes(raw)
}

// Bytes returns a copy of the raw 32-byte public key.
func (pk *PublicKey) Bytes() []byte {
	out := make([]byte, KeySize)
	copy(out, pk.raw[:])
	return out
}

// Hex returns the lowercase 64-character hex encoding of the public key.
func (pk *PublicKey) Hex() string {
	return hex.EncodeToString(pk.raw[:])
}

// Bech32 returns the checksummed npub encoding of the public key.
func (pk *PublicKey) Bech32() string {
	return pk.bech32
}
