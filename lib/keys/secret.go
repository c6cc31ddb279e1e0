package keys

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/samber/oops"
)

// KeySize is the exact length in bytes of all raw key material.
const KeySize = 32

// SecretKey holds 32 bytes of secp256k1 private key material together with
// its derived public key and encodings. It is immutable once constructed.
type SecretKey struct {
	raw    [KeySize]byte
	pub    *PublicKey
	bech32 string
}

// SecretKeyFromBytes constructs a SecretKey from exactly 32 raw bytes.
func SecretKeyFromBytes(raw []byte) (*SecretKey, error) {
	if len(raw) != KeySize {
		log.WithField("key_length", len(raw)).Error("secret key material has wrong length")
		return nil, ErrInvalidKeyLength
	}
	sk := new(SecretKey)
	copy(sk.raw[:], raw)

	pubRaw, err := DerivePublicKey(sk.raw[:])
	if err != nil {
		return nil, oops.Wrapf(err, "failed to derive public key")
	}
	sk.pub, err = PublicKeyFromBytes(pubRaw)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to construct derived public key")
	}
	sk.bech32, err = encodeBech32(SecretKeyPrefix, sk.raw[:])
	if err != nil {
		return nil, err
	}
	log.WithField("pubkey", sk.pub.Hex()).Debug("constructed secret key")
	return sk, nil
}

// SecretKeyFromHex constructs a SecretKey from a 64-character hex string.
func SecretKeyFromHex(h string) (*SecretKey, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		log.WithError(err).Warn("secret key hex decode failed")
		return nil, ErrInvalidKeyEncoding
	}
	return SecretKeyFromBytes(raw)
}

// SecretKeyFromBech32 constructs a SecretKey from its checksummed nsec encoding.
func SecretKeyFromBech32(encoded string) (*SecretKey, error) {
	raw, err := decodeBech32(encoded, SecretKeyPrefix)
	if err != nil {
		return nil, err
	}
	return SecretKeyFromBytes(raw)
}

// GenerateSecretKey creates a fresh SecretKey from the system CSPRNG.
func GenerateSecretKey() (*SecretKey, error) {
	var raw [KeySize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		log.WithError(err).Error("failed to read entropy for secret key")
		return nil, oops.Wrapf(err, "failed to generate secret key")
	}
	return SecretKeyFromBytes(raw[:])
}

// Bytes returns a copy of the raw 32-byte secret.
func (sk *SecretKey) Bytes() []byte {
	out := make([]byte, KeySize)
	copy(out, sk.raw[:])
	return out
}

// Hex returns the lowercase 64-character hex encoding of the secret.
func (sk *SecretKey) Hex() string {
	return hex.EncodeToString(sk.raw[:])
}

// Bech32 returns the checksummed nsec encoding of the secret.
func (sk *SecretKey) Bech32() string {
	return sk.bech32
}

// Public returns the public key derived from this secret.
func (sk *SecretKey) Public() *PublicKey {
	return sk.pub
}

// DerivePublicKey computes the 32-byte x-only public key for 32 bytes of
// raw private key material.
func DerivePublicKey(raw []byte) ([]byte, error) {
	if len(raw) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	_, pub := btcec.PrivKeyFromBytes(raw)
	return schnorr.SerializePubKey(pub), nil
}
