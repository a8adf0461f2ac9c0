package program

import "xdao.co/solframe/pubkey"

// AccountInfo is one external resource reference supplied to a call: address,
// owning identity, balance, a mutable data buffer, and the flags asserted by
// the platform call frame.
//
// Contract:
//   - The struct is exclusively borrowed for the duration of one call and
//     never retained past call end.
//   - Data is mutated in place; the platform guarantees no concurrent
//     external mutation during the call.
//   - All references to the same address within one transaction alias the
//     same AccountInfo, so mutations made by a callee are visible to the
//     caller when a nested call returns.
type AccountInfo struct {
	Key        pubkey.Pubkey
	Owner      pubkey.Pubkey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// AccountMeta names one account an instruction touches, tagged with the
// privileges the caller asserts for it.
type AccountMeta struct {
	Pubkey     pubkey.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Meta is shorthand for building an AccountMeta.
func Meta(key pubkey.Pubkey, writable, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: signer, IsWritable: writable}
}

// Instruction is a fully serialized call: target identity, ordered account
// references, and the discriminant-tagged payload bytes.
type Instruction struct {
	ProgramID pubkey.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// Entrypoint is the call boundary: process one payload against an ordered
// resource list. Exactly one pass of decode, validate, run, cleanup; any
// fatal error terminates the call immediately with mutations applied so far
// left in effect.
type Entrypoint func(programID pubkey.Pubkey, accounts []*AccountInfo, data []byte, host Host) error
