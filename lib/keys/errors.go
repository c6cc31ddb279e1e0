package keys

import "github.com/samber/oops"

var (
	// ErrInvalidKeyLength is returned when key material is not exactly 32 bytes.
	ErrInvalidKeyLength = oops.Errorf("invalid key length: must be 32 bytes")

	// ErrInvalidKeyEncoding is returned when a hex or bech32 string cannot be decoded.
	ErrInvalidKeyEncoding = oops.Errorf("invalid key encoding")

	// ErrInvalidPrefix is returned when a bech32 string carries the wrong
	// human-readable prefix for the requested key type.
	ErrInvalidPrefix = oops.Errorf("invalid bech32 prefix")
)
