package account

import (
	"fmt"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// SeedsProvider supplies seed material from a validate-stage argument, for
// declarations whose seeds depend on instruction data.
type SeedsProvider interface {
	Seeds() [][]byte
}

// seedDeriver is implemented by declarations that can resolve and prove
// their derived address before the inner declaration is validated. Init uses
// it to sign account creation.
type seedDeriver interface {
	DeriveSeeds(arg any, ctx *program.Context) ([][]byte, error)
}

// Seeded requires the inner account's address to equal the canonical derived
// address for the declared seeds. Seeds come from the declaration itself or,
// when Seeds is nil, from a validate-stage argument implementing
// SeedsProvider. The resolved bump is appended to the seeds exposed through
// SignerSeeds, so nested calls can re-sign as this address.
type Seeded struct {
	Inner Single
	Seeds [][]byte
	// Program overrides the deriving identity; zero means the executing
	// program.
	Program pubkey.Pubkey

	resolved [][]byte
	bump     uint8
	derived  bool
}

func (s *Seeded) DecodeAccounts(cur *Cursor, arg any, ctx *program.Context) error {
	return s.Inner.DecodeAccounts(cur, arg, ctx)
}

// DeriveSeeds recomputes the canonical address, verifies it against the
// decoded account, and returns the full signer seeds (bump included). The
// result is cached for the call.
func (s *Seeded) DeriveSeeds(arg any, ctx *program.Context) ([][]byte, error) {
	if s.derived {
		return s.resolved, nil
	}
	seeds := s.Seeds
	if seeds == nil {
		p, ok := arg.(SeedsProvider)
		if !ok {
			return nil, program.NewError(program.KindValidation, program.CodeInvalidSeeds,
				fmt.Sprintf("account %s: no seeds declared and validate argument provides none", s.Info().Key))
		}
		seeds = p.Seeds()
	}
	programID := s.Program
	if programID.IsZero() {
		programID = ctx.ProgramID()
	}
	addr, bump, err := pubkey.FindProgramAddress(seeds, programID)
	if err != nil {
		return nil, program.WrapError(program.KindValidation, program.CodeInvalidSeeds,
			fmt.Sprintf("account %s: deriving address", s.Info().Key), err)
	}
	if addr != s.Info().Key {
		return nil, program.NewError(program.KindValidation, program.CodeAddressMismatch,
			fmt.Sprintf("account %s: canonical derived address is %s", s.Info().Key, addr))
	}
	s.resolved = make([][]byte, 0, len(seeds)+1)
	s.resolved = append(s.resolved, seeds...)
	s.resolved = append(s.resolved, []byte{bump})
	s.bump = bump
	s.derived = true
	return s.resolved, nil
}

func (s *Seeded) ValidateAccounts(arg any, ctx *program.Context) error {
	if err := s.Inner.ValidateAccounts(arg, ctx); err != nil {
		return err
	}
	_, err := s.DeriveSeeds(arg, ctx)
	return err
}

func (s *Seeded) CleanupAccounts(arg any, ctx *program.Context) error {
	return s.Inner.CleanupAccounts(arg, ctx)
}

func (s *Seeded) Info() *program.AccountInfo { return s.Inner.Info() }
func (s *Seeded) Unwrap() Single             { return s.Inner }

func (s *Seeded) RequiredAccounts() int { return requiredOfSingle(s.Inner) }

// SignerSeeds returns seeds plus bump after validation, nil before. Carry
// the exact bytes on any nested call this address must sign; the callee
// re-derives independently and a mismatch is undetectable here.
func (s *Seeded) SignerSeeds() [][]byte {
	if !s.derived {
		return nil
	}
	return s.resolved
}

// Bump returns the resolved bump seed after validation.
func (s *Seeded) Bump() (uint8, bool) {
	return s.bump, s.derived
}
