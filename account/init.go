package account

import (
	"fmt"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
	"xdao.co/solframe/system"
)

// Init conditionally creates its inner account before validating it.
//
// Creation funds the rent-exempt shortfall for Space bytes from the call's
// cached funder (only the shortfall; balances are never drawn down), then
// invokes the system program signed with the account's derived seeds. A
// chain without seeds must present the new account as a signer instead.
//
// With IfNeeded, an account already owned by the expected identity is
// validated instead of re-created, and nothing is transferred. Without
// IfNeeded the creation attempt proceeds and the system program rejects the
// occupied address; recovering from that is the caller's contract.
type Init struct {
	Inner Single
	// Space is the data length allocated on creation. Zero is allowed for
	// marker accounts.
	Space uint64
	// Owner is the identity assigned on creation; zero means the executing
	// program.
	Owner pubkey.Pubkey
	// IfNeeded makes initialization idempotent.
	IfNeeded bool

	created bool
}

func (i *Init) DecodeAccounts(cur *Cursor, arg any, ctx *program.Context) error {
	return i.Inner.DecodeAccounts(cur, arg, ctx)
}

func (i *Init) ValidateAccounts(arg any, ctx *program.Context) error {
	info := i.Inner.Info()
	owner := i.Owner
	if owner.IsZero() {
		owner = ctx.ProgramID()
	}

	if i.IfNeeded && info.Owner == owner {
		return i.Inner.ValidateAccounts(arg, ctx)
	}

	if !info.IsWritable {
		return program.NewError(program.KindValidation, program.CodeNotWritable,
			fmt.Sprintf("account %s: creation requires writable access", info.Key))
	}

	funder := ctx.Funder()
	if funder == nil {
		return program.NewError(program.KindValidation, program.CodeMissingFunder,
			fmt.Sprintf("account %s: no funder declared for account creation", info.Key))
	}

	var seeds [][]byte
	if sd := findSeedDeriver(i.Inner); sd != nil {
		derived, err := sd.DeriveSeeds(arg, ctx)
		if err != nil {
			return err
		}
		seeds = derived
	} else if !info.IsSigner {
		return program.NewError(program.KindValidation, program.CodeMissingSigner,
			fmt.Sprintf("account %s: a new account must sign its own creation or declare seeds", info.Key))
	}

	rent, err := ctx.Rent()
	if err != nil {
		return err
	}
	minimum := rent.MinimumBalance(int(i.Space))

	var signerSeeds [][][]byte
	if seeds != nil {
		signerSeeds = append(signerSeeds, seeds)
	}
	if fs := funder.SignerSeeds(); fs != nil {
		signerSeeds = append(signerSeeds, fs)
	}

	if funder.CanCreate() && info.Lamports == 0 {
		ix := system.CreateAccount(funder.AccountInfo().Key, info.Key, minimum, i.Space, owner)
		if err := ctx.Host().Invoke(ix, signerSeeds); err != nil {
			return err
		}
	} else {
		if shortfall := minimum - min(minimum, info.Lamports); shortfall > 0 {
			if err := funder.FundRent(info, shortfall, ctx); err != nil {
				return err
			}
		}
		if err := ctx.Host().Invoke(system.Allocate(info.Key, i.Space), signerSeeds); err != nil {
			return err
		}
		if err := ctx.Host().Invoke(system.Assign(info.Key, owner), signerSeeds); err != nil {
			return err
		}
	}
	i.created = true

	if si := findStateInitializer(i.Inner); si != nil {
		if err := si.initState(); err != nil {
			return err
		}
	}
	if seeds != nil {
		ctx.AddSignerSeeds(seeds)
	}
	return i.Inner.ValidateAccounts(arg, ctx)
}

func (i *Init) CleanupAccounts(arg any, ctx *program.Context) error {
	return i.Inner.CleanupAccounts(arg, ctx)
}

func (i *Init) Info() *program.AccountInfo { return i.Inner.Info() }
func (i *Init) Unwrap() Single             { return i.Inner }

func (i *Init) RequiredAccounts() int { return requiredOfSingle(i.Inner) }

// Created reports whether this call actually created the account.
func (i *Init) Created() bool { return i.created }

func findSeedDeriver(s Single) seedDeriver {
	for cur := s; cur != nil; {
		if sd, ok := cur.(seedDeriver); ok {
			return sd
		}
		u, ok := cur.(Unwrapper)
		if !ok {
			return nil
		}
		cur = u.Unwrap()
	}
	return nil
}

func findStateInitializer(s Single) stateInitializer {
	for cur := s; cur != nil; {
		if si, ok := cur.(stateInitializer); ok {
			return si
		}
		u, ok := cur.(Unwrapper)
		if !ok {
			return nil
		}
		cur = u.Unwrap()
	}
	return nil
}
