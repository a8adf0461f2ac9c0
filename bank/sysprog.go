package bank

import (
	"fmt"

	"xdao.co/solframe/account"
	"xdao.co/solframe/instruction"
	"xdao.co/solframe/program"
	"xdao.co/solframe/system"
)

// The native system program is itself a framework program: its handlers are
// ordinary instruction definitions over account declarations. It is the sole
// authority for creating accounts, moving lamports between system-owned
// accounts, and assigning ownership.

func systemEntrypoint() program.Entrypoint {
	return newSystemSet().Entrypoint()
}

func newSystemSet() *instruction.Set {
	set := instruction.NewSet(system.TagWidth)
	set.MustRegister(uint64(system.TagCreateAccount), instruction.Must(createAccountDef()))
	set.MustRegister(uint64(system.TagAssign), instruction.Must(assignDef()))
	set.MustRegister(uint64(system.TagTransfer), instruction.Must(transferDef()))
	set.MustRegister(uint64(system.TagAllocate), instruction.Must(allocateDef()))
	return set
}

type createAccounts struct {
	Funder *account.Mut
	New    *account.Mut
}

func createAccountDef() instruction.Definition[system.CreateAccountArgs, createAccounts] {
	return instruction.Definition[system.CreateAccountArgs, createAccounts]{
		Name: "system/create_account",
		NewAccounts: func() *createAccounts {
			return &createAccounts{
				Funder: &account.Mut{Inner: &account.Signer{}},
				New:    &account.Mut{Inner: &account.Signer{}},
			}
		},
		Split: func(op *system.CreateAccountArgs) instruction.Stages {
			return instruction.Stages{Run: op}
		},
		Process: func(accs *createAccounts, run any, _ any, _ *program.Context) ([]byte, error) {
			args := run.(*system.CreateAccountArgs)
			funder := accs.Funder.Info()
			fresh := accs.New.Info()
			if fresh.Owner != system.ID || len(fresh.Data) > 0 || fresh.Lamports > 0 {
				return nil, fmt.Errorf("create: account %s already in use", fresh.Key)
			}
			if funder.Lamports < args.Lamports {
				return nil, fmt.Errorf("create: funder %s has %d lamports, needs %d",
					funder.Key, funder.Lamports, args.Lamports)
			}
			funder.Lamports -= args.Lamports
			fresh.Lamports += args.Lamports
			fresh.Data = alignedBuffer(int(args.Space))
			fresh.Owner = args.Owner
			return nil, nil
		},
	}
}

type transferAccounts struct {
	From *account.Mut
	To   *account.Mut
}

func transferDef() instruction.Definition[system.TransferArgs, transferAccounts] {
	return instruction.Definition[system.TransferArgs, transferAccounts]{
		Name: "system/transfer",
		NewAccounts: func() *transferAccounts {
			return &transferAccounts{
				From: &account.Mut{Inner: &account.Signer{}},
				To:   &account.Mut{Inner: &account.Unchecked{}},
			}
		},
		Split: func(op *system.TransferArgs) instruction.Stages {
			return instruction.Stages{Run: op}
		},
		Process: func(accs *transferAccounts, run any, _ any, _ *program.Context) ([]byte, error) {
			args := run.(*system.TransferArgs)
			from := accs.From.Info()
			to := accs.To.Info()
			if from.Owner != system.ID {
				return nil, fmt.Errorf("transfer: source %s is held by another program", from.Key)
			}
			if from.Lamports < args.Lamports {
				return nil, fmt.Errorf("transfer: source %s has %d lamports, needs %d",
					from.Key, from.Lamports, args.Lamports)
			}
			from.Lamports -= args.Lamports
			to.Lamports += args.Lamports
			return nil, nil
		},
	}
}

type singleSystemAccount struct {
	Account *account.Mut
}

func newSingleSystemAccount() *singleSystemAccount {
	return &singleSystemAccount{Account: &account.Mut{Inner: &account.Signer{}}}
}

func allocateDef() instruction.Definition[system.AllocateArgs, singleSystemAccount] {
	return instruction.Definition[system.AllocateArgs, singleSystemAccount]{
		Name:        "system/allocate",
		NewAccounts: newSingleSystemAccount,
		Split: func(op *system.AllocateArgs) instruction.Stages {
			return instruction.Stages{Run: op}
		},
		Process: func(accs *singleSystemAccount, run any, _ any, _ *program.Context) ([]byte, error) {
			args := run.(*system.AllocateArgs)
			info := accs.Account.Info()
			if info.Owner != system.ID || len(info.Data) > 0 {
				return nil, fmt.Errorf("allocate: account %s already in use", info.Key)
			}
			info.Data = alignedBuffer(int(args.Space))
			return nil, nil
		},
	}
}

func assignDef() instruction.Definition[system.AssignArgs, singleSystemAccount] {
	return instruction.Definition[system.AssignArgs, singleSystemAccount]{
		Name:        "system/assign",
		NewAccounts: newSingleSystemAccount,
		Split: func(op *system.AssignArgs) instruction.Stages {
			return instruction.Stages{Run: op}
		},
		Process: func(accs *singleSystemAccount, run any, _ any, _ *program.Context) ([]byte, error) {
			args := run.(*system.AssignArgs)
			info := accs.Account.Info()
			if info.Owner != system.ID {
				return nil, fmt.Errorf("assign: account %s is held by another program", info.Key)
			}
			info.Owner = args.Owner
			return nil, nil
		},
	}
}
