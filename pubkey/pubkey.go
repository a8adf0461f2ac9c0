// Package pubkey implements 32-byte account addresses and deterministic
// program-derived address (PDA) resolution.
//
// Addresses render as base58. A derived address is computed from seed byte
// sequences plus an owning program identity and is guaranteed to lie off the
// ed25519 curve, so no signing key can exist for it.
package pubkey

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the byte length of an address.
const Size = 32

// Pubkey is a 32-byte account address.
type Pubkey [Size]byte

// Zero is the all-zero address (the system program's identity).
var Zero Pubkey

// FromBytes builds a Pubkey from exactly Size bytes.
func FromBytes(b []byte) (Pubkey, error) {
	var p Pubkey
	if len(b) != Size {
		return p, fmt.Errorf("pubkey must be %d bytes, got %d", Size, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// FromBase58 parses a base58-rendered address.
func FromBase58(s string) (Pubkey, error) {
	var p Pubkey
	b, err := base58.Decode(s)
	if err != nil {
		return p, fmt.Errorf("invalid base58 pubkey: %w", err)
	}
	return FromBytes(b)
}

// MustFromBase58 parses s or panics. Intended for package-level constants.
func MustFromBase58(s string) Pubkey {
	p, err := FromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// NewUnique returns a random address. Test and example scaffolding only;
// the result is not a valid curve point in general.
func NewUnique() Pubkey {
	var p Pubkey
	if _, err := rand.Read(p[:]); err != nil {
		panic(err)
	}
	return p
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy-free view of the address bytes.
func (p *Pubkey) Bytes() []byte {
	return p[:]
}

func (p Pubkey) IsZero() bool {
	return p == Zero
}

// Equal reports byte equality. Provided for call-site symmetry with
// bytes.Equal; == works on Pubkey values directly.
func (p Pubkey) Equal(o Pubkey) bool {
	return p == o
}

// Less orders addresses lexicographically. Used for canonical serialization.
func (p Pubkey) Less(o Pubkey) bool {
	return bytes.Compare(p[:], o[:]) < 0
}
