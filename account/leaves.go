package account

import (
	"fmt"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
	"xdao.co/solframe/system"
)

// Unchecked is the plain single-account declaration: consumes one account
// and applies no constraints.
type Unchecked struct {
	info *program.AccountInfo
}

func (a *Unchecked) DecodeAccounts(cur *Cursor, _ any, _ *program.Context) error {
	infos, err := cur.Take(1, "account")
	if err != nil {
		return err
	}
	a.info = infos[0]
	return nil
}

func (a *Unchecked) ValidateAccounts(_ any, _ *program.Context) error { return nil }
func (a *Unchecked) CleanupAccounts(_ any, _ *program.Context) error  { return nil }

// Info returns the decoded account, or nil before decode.
func (a *Unchecked) Info() *program.AccountInfo { return a.info }

func (a *Unchecked) RequiredAccounts() int { return 1 }

// Signer requires its account to have signed the call.
//
// A Signer also acts as a rent funder (see Funding): keypair-backed, so it
// can invoke account creation directly and funds top-ups with a system
// transfer.
type Signer struct {
	Unchecked
}

func (s *Signer) ValidateAccounts(_ any, _ *program.Context) error {
	if !s.Info().IsSigner {
		return program.NewError(program.KindValidation, program.CodeMissingSigner,
			fmt.Sprintf("account %s: required signature is missing", s.Info().Key))
	}
	return nil
}

func (s *Signer) CanCreate() bool { return true }

func (s *Signer) FundRent(to *program.AccountInfo, lamports uint64, ctx *program.Context) error {
	return ctx.Host().Invoke(system.Transfer(s.Info().Key, to.Key, lamports), nil)
}

func (s *Signer) SignerSeeds() [][]byte { return nil }

func (s *Signer) AccountInfo() *program.AccountInfo { return s.Info() }

// Owned requires its account to be owned by a fixed identity.
type Owned struct {
	Unchecked
	Owner pubkey.Pubkey
}

func (o *Owned) ValidateAccounts(_ any, _ *program.Context) error {
	if o.Info().Owner != o.Owner {
		return program.NewError(program.KindValidation, program.CodeOwnerMismatch,
			fmt.Sprintf("account %s: owned by %s, expected %s", o.Info().Key, o.Info().Owner, o.Owner))
	}
	return nil
}

// Program requires its account to be the named executable program.
type Program struct {
	Unchecked
	ID pubkey.Pubkey
}

func (p *Program) ValidateAccounts(_ any, _ *program.Context) error {
	if p.Info().Key != p.ID {
		return program.NewError(program.KindValidation, program.CodeAddressMismatch,
			fmt.Sprintf("account %s: expected program %s", p.Info().Key, p.ID))
	}
	if !p.Info().Executable {
		return program.NewError(program.KindValidation, program.CodeNotExecutable,
			fmt.Sprintf("account %s is not executable", p.Info().Key))
	}
	return nil
}

// Rest is the variable-arity declaration: it consumes every remaining
// account, or, when the decode-stage argument is an int, exactly that many.
type Rest struct {
	Infos []*program.AccountInfo
}

func (r *Rest) DecodeAccounts(cur *Cursor, arg any, _ *program.Context) error {
	if n, ok := arg.(int); ok {
		infos, err := cur.Take(n, "account list")
		if err != nil {
			return err
		}
		r.Infos = infos
		return nil
	}
	r.Infos = cur.TakeRemaining()
	return nil
}

func (r *Rest) ValidateAccounts(_ any, _ *program.Context) error { return nil }
func (r *Rest) CleanupAccounts(_ any, _ *program.Context) error  { return nil }
