// Package system holds the system program's identity, operation tags and
// client-side instruction builders. The native implementation lives in the
// bank package; programs only ever talk to it through nested calls built
// here.
package system

import (
	"encoding/binary"

	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// ID is the system program's identity: the all-zero address, rendered in
// base58 as "11111111111111111111111111111111".
var ID = pubkey.Zero

// TagWidth is the discriminant width of the system instruction set.
const TagWidth = 4

// System operation tags, little-endian u32.
const (
	TagCreateAccount uint32 = 0
	TagAssign        uint32 = 1
	TagTransfer      uint32 = 2
	TagAllocate      uint32 = 8
)

// CreateAccountArgs funds, sizes and assigns a brand-new account in one step.
type CreateAccountArgs struct {
	Lamports uint64
	Space    uint64
	Owner    pubkey.Pubkey
}

type AssignArgs struct {
	Owner pubkey.Pubkey
}

type TransferArgs struct {
	Lamports uint64
}

type AllocateArgs struct {
	Space uint64
}

func encode[T any](tag uint32, args *T) []byte {
	buf := make([]byte, TagWidth, TagWidth+pod.SizeOf[T]())
	binary.LittleEndian.PutUint32(buf, tag)
	return append(buf, pod.Bytes(args)...)
}

// CreateAccount builds the instruction that creates newAccount with the
// given balance, data length and owner. Both funder and the new account must
// sign; a derived new account signs with its seeds.
func CreateAccount(funder, newAccount pubkey.Pubkey, lamports, space uint64, owner pubkey.Pubkey) program.Instruction {
	args := CreateAccountArgs{Lamports: lamports, Space: space, Owner: owner}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(funder, true, true),
			program.Meta(newAccount, true, true),
		},
		Data: encode(TagCreateAccount, &args),
	}
}

// Transfer builds the instruction moving lamports from one account to
// another. The source must sign.
func Transfer(from, to pubkey.Pubkey, lamports uint64) program.Instruction {
	args := TransferArgs{Lamports: lamports}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(from, true, true),
			program.Meta(to, true, false),
		},
		Data: encode(TagTransfer, &args),
	}
}

// Allocate builds the instruction resizing an account's data buffer. The
// account must sign.
func Allocate(account pubkey.Pubkey, space uint64) program.Instruction {
	args := AllocateArgs{Space: space}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(account, true, true),
		},
		Data: encode(TagAllocate, &args),
	}
}

// Assign builds the instruction handing an account's ownership to a new
// program. The account must sign.
func Assign(account pubkey.Pubkey, owner pubkey.Pubkey) program.Instruction {
	args := AssignArgs{Owner: owner}
	return program.Instruction{
		ProgramID: ID,
		Accounts: []program.AccountMeta{
			program.Meta(account, true, true),
		},
		Data: encode(TagAssign, &args),
	}
}
