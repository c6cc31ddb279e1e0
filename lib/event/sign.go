package event

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-plume/go-plume/lib/keys"
)

// Sign returns a copy of the event with ID and Sig populated. Any ID or Sig
// already present on the input is recomputed from scratch; the receiver is
// never mutated. Each call draws fresh auxiliary randomness for the BIP-340
// nonce, so signing the same event twice yields different signatures.
func (ev Event) Sign(sk *keys.SecretKey) (Event, error) {
	ev.PubKey = sk.Public().Hex()
	ev.ID = ""
	ev.Sig = ""

	digest := sha256.Sum256(ev.Serialize())
	sig, err := signDigest(digest[:], sk)
	if err != nil {
		return Event{}, oops.Wrapf(err, "failed to sign event")
	}

	ev.ID = hex.EncodeToString(digest[:])
	ev.Sig = hex.EncodeToString(sig)
	log.WithFields(logger.Fields{
		"at":   "(Event) Sign",
		"id":   ev.ID,
		"kind": ev.Kind,
	}).Debug("signed event")
	return ev, nil
}

// CheckSignature reports whether the event is internally consistent and
// carries a valid signature. It fails closed: a missing ID or Sig, an ID
// that does not match the recomputed content hash, a malformed key or
// signature, or a failed Schnorr verification all yield false. The ID check
// runs first; a valid signature over the wrong identifier is never accepted.
func (ev Event) CheckSignature() bool {
	if ev.ID == "" || ev.Sig == "" {
		return false
	}
	if ev.GetID() != ev.ID {
		log.WithFields(logger.Fields{
			"at": "(Event) CheckSignature",
			"id": ev.ID,
		}).Warn("event id does not match content hash")
		return false
	}

	pubRaw, err := hex.DecodeString(ev.PubKey)
	if err != nil || len(pubRaw) != keys.KeySize {
		return false
	}
	pub, err := schnorr.ParsePubKey(pubRaw)
	if err != nil {
		return false
	}
	sigRaw, err := hex.DecodeString(ev.Sig)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(sigRaw)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(ev.Serialize())
	return sig.Verify(digest[:], pub)
}

// SignMessage hashes an arbitrary UTF-8 message with SHA-256 and signs the
// digest directly. This is independent of the event envelope and exists for
// simple proof-of-possession exchanges.
func SignMessage(msg string, sk *keys.SecretKey) (string, error) {
	digest := sha256.Sum256([]byte(msg))
	sig, err := signDigest(digest[:], sk)
	if err != nil {
		return "", oops.Wrapf(err, "failed to sign message")
	}
	return hex.EncodeToString(sig), nil
}

// VerifyMessage reports whether sigHex is a valid signature over the SHA-256
// digest of msg under pk. Malformed input yields false, never an error.
func VerifyMessage(msg, sigHex string, pk *keys.PublicKey) bool {
	pub, err := schnorr.ParsePubKey(pk.Bytes())
	if err != nil {
		return false
	}
	sigRaw, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(sigRaw)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(msg))
	return sig.Verify(digest[:], pub)
}

func signDigest(digest []byte, sk *keys.SecretKey) ([]byte, error) {
	var aux [32]byte
	if _, err := rand.Read(aux[:]); err != nil {
		log.WithError(err).Error("failed to read auxiliary randomness")
		return nil, oops.Wrapf(err, "failed to read auxiliary randomness")
	}
	priv, _ := btcec.PrivKeyFromBytes(sk.Bytes())
	sig, err := schnorr.Sign(priv, digest, schnorr.CustomNonce(aux))
	if err != nil {
		return nil, oops.Wrapf(err, "schnorr signing failed")
	}
	return sig.Serialize(), nil
}
