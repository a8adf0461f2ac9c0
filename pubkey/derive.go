package pubkey

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Derivation limits. Fixed by the wire protocol, not tunable.
const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

// pdaMarker domain-separates derived addresses from hashes of other material.
var pdaMarker = []byte("ProgramDerivedAddress")

var (
	ErrTooManySeeds = errors.New("too many seeds")
	ErrSeedTooLong  = errors.New("seed exceeds maximum length")
	// ErrOnCurve is returned when a candidate derived address has a
	// corresponding ed25519 point, meaning a signing key could exist for it.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")
	// ErrNoViableBump is returned when no bump in [0,255] yields an
	// off-curve address. Cryptographically this is unreachable in practice.
	ErrNoViableBump = errors.New("no viable bump seed found")
)

// IsOnCurve reports whether b decompresses to a valid ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != Size {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress derives the address for the exact seed set, rejecting
// any result that lies on the curve. Callers that want the canonical bump
// should use FindProgramAddress instead.
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Zero, fmt.Errorf("%w: %d > %d", ErrTooManySeeds, len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, fmt.Errorf("%w: %d > %d", ErrSeedTooLong, len(seed), MaxSeedLen)
		}
		_, _ = h.Write(seed)
	}
	_, _ = h.Write(programID[:])
	_, _ = h.Write(pdaMarker)
	sum := h.Sum(nil)
	if IsOnCurve(sum) {
		return Zero, ErrOnCurve
	}
	return FromBytes(sum)
}

// FindProgramAddress searches bumps from 255 downward for the first
// off-curve address. The returned bump must accompany the seeds whenever the
// derived address signs a nested call, so the callee's re-derivation lands on
// the same address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Zero, 0, fmt.Errorf("%w: %d >= %d (one slot is reserved for the bump)", ErrTooManySeeds, len(seeds), MaxSeeds)
	}
	for bump := 255; bump >= 0; bump-- {
		withBump := make([][]byte, 0, len(seeds)+1)
		withBump = append(withBump, seeds...)
		withBump = append(withBump, []byte{uint8(bump)})
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}
