package account

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
)

// DiscriminantLen is the length of a typed state discriminant prefix.
const DiscriminantLen = 8

// StateDiscriminant derives the 8-byte discriminant for a state tag.
func StateDiscriminant(tag string) [DiscriminantLen]byte {
	sum := sha256.Sum256([]byte("account:" + tag))
	var d [DiscriminantLen]byte
	copy(d[:], sum[:DiscriminantLen])
	return d
}

// stateInitializer is implemented by declarations that stamp fresh account
// data after creation. Init looks it up through the wrapper chain.
type stateInitializer interface {
	initState() error
}

// Data declares a typed state account: owned by the executing program, its
// buffer reinterpreted in place as T behind an 8-byte discriminant. The view
// aliases the account buffer, so business-logic mutations are already the
// stored state; cleanup has nothing to re-serialize.
type Data[T any] struct {
	Unchecked
	// Tag selects the discriminant prefix. Empty means a bare T at offset
	// zero with no prefix.
	Tag string

	view *T
}

// Space returns the data length a fresh account of this type needs.
func (d *Data[T]) Space() uint64 {
	n := pod.SizeOf[T]()
	if d.Tag != "" {
		n += DiscriminantLen
	}
	return uint64(n)
}

func (d *Data[T]) ValidateAccounts(_ any, ctx *program.Context) error {
	info := d.Info()
	if info.Owner != ctx.ProgramID() {
		return program.NewError(program.KindValidation, program.CodeOwnerMismatch,
			fmt.Sprintf("account %s: owned by %s, expected %s", info.Key, info.Owner, ctx.ProgramID()))
	}
	buf := info.Data
	if d.Tag != "" {
		disc := StateDiscriminant(d.Tag)
		if len(buf) < DiscriminantLen || !bytes.Equal(buf[:DiscriminantLen], disc[:]) {
			return program.NewError(program.KindValidation, program.CodeDataMismatch,
				fmt.Sprintf("account %s: state discriminant mismatch for %q", info.Key, d.Tag))
		}
		buf = buf[DiscriminantLen:]
	}
	view, err := pod.View[T](buf)
	if err != nil {
		return program.WrapError(program.KindValidation, program.CodeDataMismatch,
			fmt.Sprintf("account %s: state buffer unusable", info.Key), err)
	}
	d.view = view
	return nil
}

// Get returns the live state view. Nil before validation.
func (d *Data[T]) Get() *T {
	return d.view
}

// initState stamps the discriminant into a freshly created buffer.
func (d *Data[T]) initState() error {
	if d.Tag == "" {
		return nil
	}
	info := d.Info()
	if len(info.Data) < DiscriminantLen {
		return program.NewError(program.KindInternal, program.CodeInternal,
			fmt.Sprintf("account %s: created with %d bytes, discriminant needs %d",
				info.Key, len(info.Data), DiscriminantLen))
	}
	disc := StateDiscriminant(d.Tag)
	copy(info.Data[:DiscriminantLen], disc[:])
	return nil
}
