// Package instruction implements discriminant-based dispatch and the
// operation lifecycle: decode, split, decode accounts, validate accounts,
// run, cleanup, publish result.
package instruction

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/near/borsh-go"

	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// Handler processes one operation's payload remainder after the discriminant
// has been stripped.
type Handler interface {
	Process(accounts []*program.AccountInfo, data []byte, ctx *program.Context) error
}

// Set is a closed, enumerated operation set sharing one fixed-width
// little-endian discriminant scheme. Tag assignment is a property of the
// set: the same handler may carry different tags in different sets.
type Set struct {
	tagWidth int
	handlers map[uint64]Handler
}

// NewSet builds an empty set with the given discriminant width in bytes.
// Panics on widths other than 1, 2, 4 or 8; the width is a compile-time
// property of a program's wire format.
func NewSet(tagWidth int) *Set {
	switch tagWidth {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("instruction: invalid discriminant width %d", tagWidth))
	}
	return &Set{tagWidth: tagWidth, handlers: make(map[uint64]Handler)}
}

// TagWidth returns the discriminant width in bytes.
func (s *Set) TagWidth() int { return s.tagWidth }

// Register assigns a tag to a handler. Tags are unique within the set and
// must fit the discriminant width.
func (s *Set) Register(tag uint64, h Handler) error {
	if max := maxTag(s.tagWidth); tag > max {
		return fmt.Errorf("instruction: tag %d exceeds %d-byte discriminant", tag, s.tagWidth)
	}
	if _, exists := s.handlers[tag]; exists {
		return fmt.Errorf("instruction: duplicate tag %d", tag)
	}
	if h == nil {
		return fmt.Errorf("instruction: nil handler for tag %d", tag)
	}
	s.handlers[tag] = h
	return nil
}

// MustRegister is Register for program construction at package init.
func (s *Set) MustRegister(tag uint64, h Handler) {
	if err := s.Register(tag, h); err != nil {
		panic(err)
	}
}

// TagBytes renders a tag in the set's wire encoding.
func (s *Set) TagBytes(tag uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], tag)
	return buf[:s.tagWidth]
}

// Dispatch reads the leading discriminant, strips it, and forwards the
// payload remainder to the matched handler with a fresh per-call context.
// An unmatched tag is fatal; there is no fallback handler.
func (s *Set) Dispatch(programID pubkey.Pubkey, host program.Host, accounts []*program.AccountInfo, data []byte) error {
	if len(data) < s.tagWidth {
		return program.NewError(program.KindDecode, program.CodeShortHeader,
			fmt.Sprintf("payload is %d bytes, discriminant needs %d", len(data), s.tagWidth))
	}
	raw := data[:s.tagWidth]
	var buf [8]byte
	copy(buf[:], raw)
	tag := binary.LittleEndian.Uint64(buf[:])
	h, ok := s.handlers[tag]
	if !ok {
		return program.NewError(program.KindDiscriminant, program.CodeUnknownDiscriminant,
			fmt.Sprintf("unknown discriminant 0x%s (%d)", hex.EncodeToString(raw), tag))
	}
	ctx := program.NewContext(programID, host)
	return h.Process(accounts, data[s.tagWidth:], ctx)
}

// Entrypoint adapts the set to the platform call boundary.
func (s *Set) Entrypoint() program.Entrypoint {
	return func(programID pubkey.Pubkey, accounts []*program.AccountInfo, data []byte, host program.Host) error {
		return s.Dispatch(programID, host, accounts, data)
	}
}

// Encode builds the wire bytes for one operation: discriminant, fixed
// header, optional borsh trailing value. The counterpart of Dispatch plus
// the hybrid decoder; encode-then-dispatch round-trips.
func Encode[T any](s *Set, tag uint64, header *T, trailing any) ([]byte, error) {
	if err := pod.Validate[T](); err != nil {
		return nil, err
	}
	out := append([]byte(nil), s.TagBytes(tag)...)
	out = append(out, pod.Bytes(header)...)
	if trailing != nil {
		tb, err := borsh.Serialize(trailing)
		if err != nil {
			return nil, fmt.Errorf("serializing trailing data: %w", err)
		}
		out = append(out, tb...)
	}
	return out, nil
}

func maxTag(width int) uint64 {
	if width == 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(width)) - 1
}
