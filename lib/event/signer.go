package event

import (
	"context"

	"github.com/go-plume/go-plume/lib/keys"
)

// Signer produces signed events for one identity. The two implementations
// are LocalSigner, which holds raw key material in process, and any external
// delegate (a browser extension bridge, a hardware signer, a remote signing
// service) satisfying the same interface. Code that signs events should
// accept a Signer rather than a SecretKey so either works.
type Signer interface {
	// PublicKey returns the signer's hex-encoded public key.
	PublicKey(ctx context.Context) (string, error)
	// SignEvent returns a signed copy of ev with ID and Sig populated.
	SignEvent(ctx context.Context, ev Event) (Event, error)
}

// Encrypter is the optional encryption capability an external signer may
// expose, keyed by the hex public key of the counterparty. Two scheme
// variants exist (NIP-04 and NIP-44); a delegate advertises each by
// satisfying the corresponding interface. This package never calls them —
// they are declared so callers can delegate to the same external object
// they sign with.
type Encrypter interface {
	Encrypt(ctx context.Context, peerPubKey, plaintext string) (string, error)
	Decrypt(ctx context.Context, peerPubKey, ciphertext string) (string, error)
}

// NIP04Encrypter marks the legacy encryption scheme variant.
type NIP04Encrypter interface {
	NIP04() Encrypter
}

// NIP44Encrypter marks the versioned-payload encryption scheme variant.
type NIP44Encrypter interface {
	NIP44() Encrypter
}

// Compile-time check that LocalSigner implements Signer.
var _ Signer = (*LocalSigner)(nil)

// LocalSigner is the in-process Signer backed by a SecretKey. Its operations
// never block on anything external; the context is accepted only to satisfy
// the interface.
type LocalSigner struct {
	sk *keys.SecretKey
}

// NewLocalSigner wraps a secret key as a Signer.
func NewLocalSigner(sk *keys.SecretKey) *LocalSigner {
	return &LocalSigner{sk: sk}
}

func (s *LocalSigner) PublicKey(ctx context.Context) (string, error) {
	return s.sk.Public().Hex(), nil
}

func (s *LocalSigner) SignEvent(ctx context.Context, ev Event) (Event, error) {
	return ev.Sign(s.sk)
}
