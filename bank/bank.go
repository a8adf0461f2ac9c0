// Package bank is an in-process simulated platform for framework programs:
// a ledger of accounts, a native system program, synchronous nested-call
// dispatch with signer-privilege enforcement, and the transaction
// commit/discard boundary the framework itself deliberately does not
// implement.
package bank

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
	"xdao.co/solframe/system"
)

// stored is the bank's canonical per-account state between transactions.
type stored struct {
	lamports   uint64
	owner      pubkey.Pubkey
	data       []byte
	executable bool
}

// Bank holds ledger state and registered program entrypoints.
//
// A Bank is single-threaded by contract, like the platform it simulates:
// one transaction runs start-to-finish before the next begins.
type Bank struct {
	log      *zap.Logger
	rent     program.Rent
	accounts map[pubkey.Pubkey]*stored
	programs map[pubkey.Pubkey]program.Entrypoint

	retProgram pubkey.Pubkey
	retData    []byte
}

// New builds a bank from a genesis config. A nil logger is replaced with a
// nop logger. The native system program is always registered.
func New(cfg Config, log *zap.Logger) (*Bank, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bank{
		log:      log,
		rent:     cfg.rent(),
		accounts: make(map[pubkey.Pubkey]*stored),
		programs: make(map[pubkey.Pubkey]program.Entrypoint),
	}
	b.RegisterProgram(system.ID, systemEntrypoint())
	for _, g := range cfg.Genesis {
		addr, acc, err := g.account()
		if err != nil {
			return nil, err
		}
		b.accounts[addr] = acc
	}
	return b, nil
}

// RegisterProgram installs a program entrypoint and its executable ledger
// account.
func (b *Bank) RegisterProgram(id pubkey.Pubkey, entry program.Entrypoint) {
	b.programs[id] = entry
	b.accounts[id] = &stored{lamports: 1, executable: true}
}

// Airdrop mints lamports straight onto an account, creating a system-owned
// account when absent.
func (b *Bank) Airdrop(addr pubkey.Pubkey, lamports uint64) {
	acc, ok := b.accounts[addr]
	if !ok {
		acc = &stored{owner: system.ID}
		b.accounts[addr] = acc
	}
	acc.lamports += lamports
}

// SetAccount installs account state directly, bypassing the system program.
// Test scaffolding for states that would be tedious to reach by transaction.
func (b *Bank) SetAccount(addr pubkey.Pubkey, acc program.AccountInfo) {
	b.accounts[addr] = &stored{
		lamports:   acc.Lamports,
		owner:      acc.Owner,
		data:       alignedCopy(acc.Data),
		executable: acc.Executable,
	}
}

// Account returns a copy of the stored account state.
func (b *Bank) Account(addr pubkey.Pubkey) (program.AccountInfo, bool) {
	acc, ok := b.accounts[addr]
	if !ok {
		return program.AccountInfo{}, false
	}
	return program.AccountInfo{
		Key:        addr,
		Owner:      acc.owner,
		Lamports:   acc.lamports,
		Data:       append([]byte(nil), acc.data...),
		Executable: acc.executable,
	}, true
}

// Lamports returns an account's balance, zero when absent.
func (b *Bank) Lamports(addr pubkey.Pubkey) uint64 {
	if acc, ok := b.accounts[addr]; ok {
		return acc.lamports
	}
	return 0
}

// ProcessInstruction runs one top-level instruction as a transaction.
//
// Signer flags on the top-level metas are trusted as asserted; the real
// platform verifies them against transaction signatures before dispatch.
// On success all mutations commit; on failure every uncommitted mutation is
// discarded, which is the platform guarantee the framework's error model
// relies on.
func (b *Bank) ProcessInstruction(ix program.Instruction) error {
	entry, ok := b.programs[ix.ProgramID]
	if !ok {
		return program.NewError(program.KindInvoke, program.CodeUnknownProgram,
			fmt.Sprintf("no program registered at %s", ix.ProgramID))
	}

	b.retProgram = pubkey.Zero
	b.retData = nil

	infos := make(map[pubkey.Pubkey]*program.AccountInfo)
	ordered := make([]*program.AccountInfo, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		info, seen := infos[meta.Pubkey]
		if !seen {
			acc, ok := b.accounts[meta.Pubkey]
			if !ok {
				acc = &stored{owner: system.ID}
			}
			info = &program.AccountInfo{
				Key:        meta.Pubkey,
				Owner:      acc.owner,
				Lamports:   acc.lamports,
				Data:       alignedCopy(acc.data),
				Executable: acc.executable,
			}
			infos[meta.Pubkey] = info
		}
		info.IsSigner = info.IsSigner || meta.IsSigner
		info.IsWritable = info.IsWritable || meta.IsWritable
		ordered = append(ordered, info)
	}

	frame := &hostFrame{bank: b, programID: ix.ProgramID, infos: infos}
	if err := entry(ix.ProgramID, ordered, ix.Data, frame); err != nil {
		b.log.Info("transaction failed",
			zap.String("program", ix.ProgramID.String()),
			zap.Error(err))
		return err
	}

	for addr, info := range infos {
		acc, ok := b.accounts[addr]
		if !ok {
			acc = &stored{}
			b.accounts[addr] = acc
		}
		acc.lamports = info.Lamports
		acc.owner = info.Owner
		acc.data = info.Data
		acc.executable = info.Executable
	}
	b.log.Debug("transaction committed",
		zap.String("program", ix.ProgramID.String()),
		zap.Int("accounts", len(ordered)))
	return nil
}

// ReturnData reads the side channel published by the last transaction.
func (b *Bank) ReturnData() (pubkey.Pubkey, []byte) {
	return b.retProgram, b.retData
}

// alignedCopy copies bytes into an 8-byte-aligned buffer, so zero-copy state
// views of 64-bit fields stay valid.
func alignedCopy(src []byte) []byte {
	return append(alignedBuffer(len(src))[:0], src...)
}

// alignedBuffer allocates n zero bytes backed by uint64 storage.
func alignedBuffer(n int) []byte {
	if n == 0 {
		return nil
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}
