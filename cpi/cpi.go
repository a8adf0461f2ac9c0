// Package cpi builds and dispatches nested calls: synchronous sub-calls from
// one program into another within the same top-level call.
//
// Account ordering in a nested call must exactly match the target
// operation's declared account shape; a mismatch cannot be detected locally
// and is the caller's contract obligation. Any failure raised by the target
// propagates verbatim as the caller's own failure.
package cpi

import (
	"fmt"

	"github.com/near/borsh-go"

	"xdao.co/solframe/account"
	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// NewInstruction serializes one sub-payload: raw discriminant bytes in the
// target's scheme, the fixed header, and an optional borsh trailing value.
func NewInstruction[T any](target pubkey.Pubkey, tag []byte, header *T, trailing any, metas ...program.AccountMeta) (program.Instruction, error) {
	if err := pod.Validate[T](); err != nil {
		return program.Instruction{}, fmt.Errorf("cpi header layout: %w", err)
	}
	data := append([]byte(nil), tag...)
	data = append(data, pod.Bytes(header)...)
	if trailing != nil {
		tb, err := borsh.Serialize(trailing)
		if err != nil {
			return program.Instruction{}, fmt.Errorf("cpi trailing data: %w", err)
		}
		data = append(data, tb...)
	}
	return program.Instruction{ProgramID: target, Accounts: metas, Data: data}, nil
}

// Meta derives an account meta from a declaration, carrying the privileges
// the account holds in the current frame.
func Meta(s account.Single) program.AccountMeta {
	info := s.Info()
	return program.AccountMeta{Pubkey: info.Key, IsSigner: info.IsSigner, IsWritable: info.IsWritable}
}

// Invoke transfers control synchronously to the instruction's target,
// carrying the signer-seed sets accumulated in the context.
func Invoke(ctx *program.Context, ix program.Instruction) error {
	return InvokeSigned(ctx, ix)
}

// InvokeSigned is Invoke with additional derived-address seed sets. Each set
// is the exact seed bytes plus bump for one address that must sign in the
// callee frame; the host re-derives each with the calling program's
// identity.
func InvokeSigned(ctx *program.Context, ix program.Instruction, seeds ...[][]byte) error {
	all := append([][][]byte(nil), ctx.SignerSeeds()...)
	all = append(all, seeds...)
	return ctx.Host().Invoke(ix, all)
}
