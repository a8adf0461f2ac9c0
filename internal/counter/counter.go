// Package counter is a small end-to-end program: a per-authority counter
// held in a derived-address state account, created on first use and bumped
// by its authority afterwards. It exercises the whole stack and backs the
// demo subcommand.
package counter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"xdao.co/solframe/account"
	"xdao.co/solframe/instruction"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
	"xdao.co/solframe/system"
)

// ID is the counter program's identity.
var ID = pubkey.Pubkey(sha256.Sum256([]byte("solframe/internal/counter")))

// StateTag names the counter state type; its hash is the account
// discriminant.
const StateTag = "counter"

// SeedPrefix is the first seed of every counter address.
const SeedPrefix = "counter"

const (
	TagInitialize uint64 = 0
	TagIncrement  uint64 = 1
)

// CounterState is the account state, reinterpreted in place.
type CounterState struct {
	Authority pubkey.Pubkey
	Count     uint64
	Bump      uint8
	_         [7]uint8
}

// InitializeArgs is the fixed header of Initialize. The authority doubles as
// seed material for the counter's derived address.
type InitializeArgs struct {
	Authority pubkey.Pubkey
}

func (a *InitializeArgs) Seeds() [][]byte {
	return [][]byte{[]byte(SeedPrefix), a.Authority[:]}
}

// IncrementArgs is the fixed header of Increment.
type IncrementArgs struct {
	Amount uint64
}

// Note is Increment's optional trailing data. An absent trailing section
// decodes to the empty memo.
type Note struct {
	Memo string
}

// Address returns the canonical counter address for an authority.
func Address(authority pubkey.Pubkey) (pubkey.Pubkey, uint8, error) {
	return pubkey.FindProgramAddress([][]byte{[]byte(SeedPrefix), authority[:]}, ID)
}

var ops = NewSet()

// NewSet builds the program's operation set: single-byte discriminants,
// Initialize at 0, Increment at 1.
func NewSet() *instruction.Set {
	set := instruction.NewSet(1)
	set.MustRegister(TagInitialize, instruction.Must(initializeDef()))
	set.MustRegister(TagIncrement, instruction.Must(incrementDef()))
	return set
}

// Entrypoint adapts the program for registration with a host.
func Entrypoint() program.Entrypoint {
	return ops.Entrypoint()
}

type initializeAccounts struct {
	Payer         *account.Funding
	Counter       *account.Init
	SystemProgram *account.Program

	state  *account.Data[CounterState]
	seeded *account.Seeded
}

func initializeDef() instruction.Definition[InitializeArgs, initializeAccounts] {
	return instruction.Definition[InitializeArgs, initializeAccounts]{
		Name: "counter/initialize",
		NewAccounts: func() *initializeAccounts {
			state := &account.Data[CounterState]{Tag: StateTag}
			seeded := &account.Seeded{Inner: state}
			return &initializeAccounts{
				Payer:         &account.Funding{Inner: &account.Mut{Inner: &account.Signer{}}},
				Counter:       &account.Init{Inner: seeded, Space: state.Space(), IfNeeded: true},
				SystemProgram: &account.Program{ID: system.ID},
				state:         state,
				seeded:        seeded,
			}
		},
		Split: func(op *InitializeArgs) instruction.Stages {
			return instruction.Stages{Validate: op, Run: op}
		},
		Process: func(accs *initializeAccounts, run any, _ any, ctx *program.Context) ([]byte, error) {
			args := run.(*InitializeArgs)
			st := accs.state.Get()
			if !accs.Counter.Created() {
				if st.Authority != args.Authority {
					return nil, fmt.Errorf("counter %s belongs to %s", accs.Counter.Info().Key, st.Authority)
				}
				return nil, nil
			}
			bump, _ := accs.seeded.Bump()
			st.Authority = args.Authority
			st.Count = 0
			st.Bump = bump
			ctx.Log(fmt.Sprintf("counter %s initialized for %s", accs.Counter.Info().Key, args.Authority))
			return nil, nil
		},
	}
}

type incrementAccounts struct {
	Authority *account.Signer
	Counter   *account.Mut

	state *account.Data[CounterState]
}

func incrementDef() instruction.Definition[IncrementArgs, incrementAccounts] {
	return instruction.Definition[IncrementArgs, incrementAccounts]{
		Name: "counter/increment",
		NewAccounts: func() *incrementAccounts {
			state := &account.Data[CounterState]{Tag: StateTag}
			return &incrementAccounts{
				Authority: &account.Signer{},
				Counter:   &account.Mut{Inner: state},
				state:     state,
			}
		},
		Split: func(op *IncrementArgs) instruction.Stages {
			return instruction.Stages{Run: op}
		},
		NewTrailing: func() any { return new(Note) },
		Process: func(accs *incrementAccounts, run any, trailing any, ctx *program.Context) ([]byte, error) {
			args := run.(*IncrementArgs)
			st := accs.state.Get()
			if st.Authority != accs.Authority.Info().Key {
				return nil, fmt.Errorf("account %s is not the counter authority", accs.Authority.Info().Key)
			}
			st.Count += args.Amount
			if note := trailing.(*Note); note.Memo != "" {
				ctx.Log("memo: " + note.Memo)
			}
			ret := make([]byte, 8)
			binary.LittleEndian.PutUint64(ret, st.Count)
			return ret, nil
		},
	}
}

// InitializeInstruction builds the client-side Initialize call.
func InitializeInstruction(payer, authority pubkey.Pubkey) (program.Instruction, error) {
	addr, _, err := Address(authority)
	if err != nil {
		return program.Instruction{}, err
	}
	data, err := instruction.Encode(ops, TagInitialize, &InitializeArgs{Authority: authority}, nil)
	if err != nil {
		return program.Instruction{}, err
	}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(payer, true, true),
			program.Meta(addr, true, false),
			program.Meta(system.ID, false, false),
		},
		Data: data,
	}, nil
}

// IncrementInstruction builds the client-side Increment call. An empty memo
// sends no trailing bytes.
func IncrementInstruction(authority pubkey.Pubkey, amount uint64, memo string) (program.Instruction, error) {
	addr, _, err := Address(authority)
	if err != nil {
		return program.Instruction{}, err
	}
	var trailing any
	if memo != "" {
		trailing = Note{Memo: memo}
	}
	data, err := instruction.Encode(ops, TagIncrement, &IncrementArgs{Amount: amount}, trailing)
	if err != nil {
		return program.Instruction{}, err
	}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(authority, false, true),
			program.Meta(addr, true, false),
		},
		Data: data,
	}, nil
}
