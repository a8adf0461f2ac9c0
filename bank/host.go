package bank

import (
	"fmt"

	"go.uber.org/zap"

	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
)

// maxInvokeDepth bounds nested-call recursion, matching the platform limit.
const maxInvokeDepth = 4

// hostFrame implements program.Host for one program invocation. Each nested
// call gets a child frame whose accounts alias the parent's by address, with
// privileges narrowed to the callee's metas.
type hostFrame struct {
	bank      *Bank
	programID pubkey.Pubkey
	infos     map[pubkey.Pubkey]*program.AccountInfo
	depth     int
}

func (h *hostFrame) Rent() (program.Rent, error) {
	return h.bank.rent, nil
}

func (h *hostFrame) SetReturnData(programID pubkey.Pubkey, data []byte) {
	h.bank.retProgram = programID
	h.bank.retData = append([]byte(nil), data...)
}

func (h *hostFrame) ReturnData() (pubkey.Pubkey, []byte) {
	return h.bank.retProgram, h.bank.retData
}

func (h *hostFrame) Log(msg string) {
	h.bank.log.Info(msg, zap.String("program", h.programID.String()))
}

// Invoke dispatches a nested call. Signer privileges may come from the
// caller's own frame or from derived-address seed sets, re-derived here with
// the calling program's identity. A callee failure propagates verbatim.
func (h *hostFrame) Invoke(ix program.Instruction, signerSeeds [][][]byte) error {
	if h.depth >= maxInvokeDepth {
		return program.NewError(program.KindInvoke, program.CodeInternal,
			fmt.Sprintf("nested call depth limit %d exceeded", maxInvokeDepth))
	}
	entry, ok := h.bank.programs[ix.ProgramID]
	if !ok {
		return program.NewError(program.KindInvoke, program.CodeUnknownProgram,
			fmt.Sprintf("no program registered at %s", ix.ProgramID))
	}

	derived := make(map[pubkey.Pubkey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := pubkey.CreateProgramAddress(seeds, h.programID)
		if err != nil {
			return program.WrapError(program.KindInvoke, program.CodeInvalidSeeds,
				"re-deriving nested-call signer", err)
		}
		derived[addr] = true
	}

	childInfos := make(map[pubkey.Pubkey]*program.AccountInfo, len(ix.Accounts))
	ordered := make([]*program.AccountInfo, 0, len(ix.Accounts))
	parents := make(map[pubkey.Pubkey]*program.AccountInfo, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		parent, ok := h.infos[meta.Pubkey]
		if !ok {
			return program.NewError(program.KindInvoke, program.CodeInternal,
				fmt.Sprintf("account %s is not part of the transaction", meta.Pubkey))
		}
		child, seen := childInfos[meta.Pubkey]
		if !seen {
			clone := *parent
			clone.IsSigner = false
			clone.IsWritable = false
			child = &clone
			childInfos[meta.Pubkey] = child
			parents[meta.Pubkey] = parent
		}
		if meta.IsSigner {
			if !parent.IsSigner && !derived[meta.Pubkey] {
				return program.NewError(program.KindInvoke, program.CodePrivilegeEscalation,
					fmt.Sprintf("account %s: signer privilege not held by caller", meta.Pubkey))
			}
			child.IsSigner = true
		}
		if meta.IsWritable {
			if !parent.IsWritable {
				return program.NewError(program.KindInvoke, program.CodePrivilegeEscalation,
					fmt.Sprintf("account %s: writable privilege not held by caller", meta.Pubkey))
			}
			child.IsWritable = true
		}
		ordered = append(ordered, child)
	}

	child := &hostFrame{
		bank:      h.bank,
		programID: ix.ProgramID,
		infos:     childInfos,
		depth:     h.depth + 1,
	}
	if err := entry(ix.ProgramID, ordered, ix.Data, child); err != nil {
		return err
	}

	// Mutations made by the callee become visible to the caller on return.
	for addr, ci := range childInfos {
		parent := parents[addr]
		parent.Lamports = ci.Lamports
		parent.Owner = ci.Owner
		parent.Data = ci.Data
		parent.Executable = ci.Executable
	}
	return nil
}
