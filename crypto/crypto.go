/*
Package crypto holds the keys and signatures used to authenticate
transactions. Only ed25519 is supported.
*/
package crypto

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// DefaultDerivationPath is the SLIP-10 path used for wallet keys when none
// is given.
const DefaultDerivationPath = "m/44'/234'/0'"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() crowdfund.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `json:"ed25519"`
}

var _ PubKey = (*PublicKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a crowdfund condition
func (p *PublicKey) Condition() crowdfund.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return crowdfund.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address is the hash of the condition, or nil for an empty key.
func (p *PublicKey) Address() crowdfund.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

// Validate returns an error if this is not a usable ed25519 public key.
func (p *PublicKey) Validate() error {
	if p == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key must be %d bytes", ed25519.PublicKeySize)
	}
	return nil
}

// Marshal implements crowdfund.Persistent.
func (p *PublicKey) Marshal() ([]byte, error) {
	return codec.Marshal(p)
}

// Unmarshal implements crowdfund.Persistent.
func (p *PublicKey) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, p)
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `json:"ed25519"`
}

// PrivateKey is an ed25519 private key, seed and public key concatenated.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInput, "invalid private key")
	}
	bz := ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)
	return &Signature{Ed25519: bz}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// Marshal implements crowdfund.Persistent.
func (p *PrivateKey) Marshal() ([]byte, error) {
	return codec.Marshal(p)
}

// Unmarshal implements crowdfund.Persistent.
func (p *PrivateKey) Unmarshal(bz []byte) error {
	if err := codec.Unmarshal(bz, p); err != nil {
		return err
	}
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return errors.Wrap(errors.ErrInput, "invalid private key length")
	}
	return nil
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}

// DeriveKey derives a private key from a master seed using the SLIP-10
// hardened path. An empty path uses DefaultDerivationPath.
func DeriveKey(seed []byte, path string) (*PrivateKey, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
