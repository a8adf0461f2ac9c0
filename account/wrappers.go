package account

import (
	"fmt"

	"xdao.co/solframe/program"
)

// Mut requires the inner account to be writable. Consumes no accounts of its
// own.
type Mut struct {
	Inner Single
}

func (m *Mut) DecodeAccounts(cur *Cursor, arg any, ctx *program.Context) error {
	return m.Inner.DecodeAccounts(cur, arg, ctx)
}

func (m *Mut) ValidateAccounts(arg any, ctx *program.Context) error {
	if err := m.Inner.ValidateAccounts(arg, ctx); err != nil {
		return err
	}
	if !m.Info().IsWritable {
		return program.NewError(program.KindValidation, program.CodeNotWritable,
			fmt.Sprintf("account %s: writable access required", m.Info().Key))
	}
	return nil
}

func (m *Mut) CleanupAccounts(arg any, ctx *program.Context) error {
	return m.Inner.CleanupAccounts(arg, ctx)
}

func (m *Mut) Info() *program.AccountInfo { return m.Inner.Info() }
func (m *Mut) Unwrap() Single             { return m.Inner }

func (m *Mut) RequiredAccounts() int { return requiredOfSingle(m.Inner) }

// Funding validates its inner declaration, then caches it as the call's rent
// funder. The inner chain must contain a program.Funder (a Signer does).
// Declare the funding account before any Init declaration; composites
// validate in field order.
type Funding struct {
	Inner Single
}

func (f *Funding) DecodeAccounts(cur *Cursor, arg any, ctx *program.Context) error {
	return f.Inner.DecodeAccounts(cur, arg, ctx)
}

func (f *Funding) ValidateAccounts(arg any, ctx *program.Context) error {
	if err := f.Inner.ValidateAccounts(arg, ctx); err != nil {
		return err
	}
	funder := findFunder(f.Inner)
	if funder == nil {
		return program.NewError(program.KindInternal, program.CodeInternal,
			fmt.Sprintf("declaration %T cannot fund rent", f.Inner))
	}
	ctx.SetFunder(funder)
	return nil
}

func (f *Funding) CleanupAccounts(arg any, ctx *program.Context) error {
	return f.Inner.CleanupAccounts(arg, ctx)
}

func (f *Funding) Info() *program.AccountInfo { return f.Inner.Info() }
func (f *Funding) Unwrap() Single             { return f.Inner }

func (f *Funding) RequiredAccounts() int { return requiredOfSingle(f.Inner) }

// findFunder walks the wrapper chain for a program.Funder implementation.
func findFunder(s Single) program.Funder {
	for cur := s; cur != nil; {
		if f, ok := cur.(program.Funder); ok {
			return f
		}
		u, ok := cur.(Unwrapper)
		if !ok {
			return nil
		}
		cur = u.Unwrap()
	}
	return nil
}

func requiredOfSingle(s Single) int {
	if n, ok := requiredOf(s); ok {
		return n
	}
	return 1
}
