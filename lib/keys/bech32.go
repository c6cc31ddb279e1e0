package keys

import (
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// Human-readable prefixes for the checksummed key encodings.
const (
	SecretKeyPrefix = "nsec"
	PublicKeyPrefix = "npub"
)

// encodeBech32 encodes 32 raw key bytes under the given human-readable prefix.
func encodeBech32(prefix string, raw []byte) (string, error) {
	words, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", oops.Wrapf(err, "failed to convert key bytes to bech32 words")
	}
	encoded, err := bech32.Encode(prefix, words)
	if err != nil {
		return "", oops.Wrapf(err, "failed to encode bech32 key")
	}
	return encoded, nil
}

// decodeBech32 decodes a checksummed key string, enforcing the expected
// human-readable prefix and the 32-byte payload length. Failure causes are
// kept distinct so callers can tell a checksum error from a prefix mismatch
// from a bad payload length.
func decodeBech32(encoded, wantPrefix string) ([]byte, error) {
	prefix, words, err := bech32.Decode(encoded)
	if err != nil {
		log.WithError(err).WithField("at", "decodeBech32").Warn("bech32 decode failed")
		return nil, ErrInvalidKeyEncoding
	}
	if prefix != wantPrefix {
		log.WithFields(logger.Fields{
			"at":   "decodeBech32",
			"got":  prefix,
			"want": wantPrefix,
		}).Warn("bech32 prefix mismatch")
		return nil, ErrInvalidPrefix
	}
	raw, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		log.WithError(err).WithField("at", "decodeBech32").Warn("bech32 payload conversion failed")
		return nil, ErrInvalidKeyEncoding
	}
	if len(raw) != KeySize {
		log.WithField("payload_length", len(raw)).Warn("bech32 payload is not a 32-byte key")
		return nil, ErrInvalidKeyLength
	}
	return raw, nil
}
