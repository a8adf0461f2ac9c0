package instruction

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"

	"xdao.co/solframe/account"
	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
)

// Stages holds the four stage-scoped projections of one decoded operation.
// Each view references only the fields its stage needs and is passed to
// exactly that stage; no two views are live at once.
type Stages struct {
	Decode   any
	Validate any
	Run      any
	Cleanup  any
}

// Definition describes one operation: a fixed-layout header type T
// (layout-checked when the handler is built, not per call), an account
// declaration tree A, an optional trailing codec target, the argument
// splitter and the business logic.
type Definition[T any, A any] struct {
	// Name identifies the operation in diagnostics.
	Name string

	// NewAccounts returns a fresh declaration tree for one call. Nil means
	// new(A), which suffices when A has no wrapper fields needing inner
	// declarations.
	NewAccounts func() *A

	// Split projects the decoded header into the stage views. Nil means no
	// stage arguments. Split must be pure: views into *op, no copies, no
	// side effects.
	Split func(op *T) Stages

	// NewTrailing returns the target the trailing bytes are decoded into.
	// Nil declares no trailing data; the zero target is the declared
	// default when no bytes remain.
	NewTrailing func() any

	// Process runs business logic against the validated accounts. Returned
	// bytes, if any, are published as the call's return data.
	Process func(accounts *A, run any, trailing any, ctx *program.Context) ([]byte, error)
}

// New builds a handler, verifying T's byte layout once at definition time.
func New[T any, A any](def Definition[T, A]) (Handler, error) {
	if err := pod.Validate[T](); err != nil {
		return nil, fmt.Errorf("instruction %q: header layout: %w", def.Name, err)
	}
	if def.Process == nil {
		return nil, fmt.Errorf("instruction %q: missing Process", def.Name)
	}
	return &handler[T, A]{def: def, headerSize: pod.SizeOf[T]()}, nil
}

// Must is New for program construction at package init.
func Must[T any, A any](def Definition[T, A]) Handler {
	h, err := New(def)
	if err != nil {
		panic(err)
	}
	return h
}

type handler[T any, A any] struct {
	def        Definition[T, A]
	headerSize int
}

// Process runs the full lifecycle for one call:
//  1. reinterpret the fixed header in place,
//  2. decode trailing bytes or take the declared default,
//  3. split the header into stage views,
//  4. decode accounts through the shared cursor,
//  5. validate accounts,
//  6. run business logic,
//  7. cleanup accounts,
//  8. publish non-empty return data.
func (h *handler[T, A]) Process(infos []*program.AccountInfo, data []byte, ctx *program.Context) error {
	if len(data) < h.headerSize {
		return program.NewError(program.KindDecode, program.CodeShortHeader,
			fmt.Sprintf("%s: fixed header needs %d bytes, got %d", h.def.Name, h.headerSize, len(data)))
	}
	op, err := pod.Read[T](data)
	if err != nil {
		return program.WrapError(program.KindDecode, program.CodeShortHeader, h.def.Name, err)
	}

	var trailing any
	if h.def.NewTrailing != nil {
		trailing = h.def.NewTrailing()
		if rest := data[h.headerSize:]; len(rest) > 0 {
			if err := borsh.Deserialize(trailing, rest); err != nil {
				return program.WrapError(program.KindDecode, program.CodeMalformedTrailing,
					fmt.Sprintf("%s: trailing data", h.def.Name), err)
			}
		}
	}

	var stages Stages
	if h.def.Split != nil {
		stages = h.def.Split(&op)
	}

	var accounts *A
	if h.def.NewAccounts != nil {
		accounts = h.def.NewAccounts()
	} else {
		accounts = new(A)
	}

	cur := account.NewCursor(infos)
	if err := account.Decode(accounts, cur, stages.Decode, ctx); err != nil {
		return err
	}
	if err := account.Validate(accounts, stages.Validate, ctx); err != nil {
		return err
	}

	ret, err := h.def.Process(accounts, stages.Run, trailing, ctx)
	if err != nil {
		return stageError(program.KindExecution, program.CodeProcessFailed, h.def.Name, err)
	}

	if err := account.Cleanup(accounts, stages.Cleanup, ctx); err != nil {
		return stageError(program.KindCleanup, program.CodeCleanupFailed, h.def.Name, err)
	}

	if len(ret) > 0 {
		ctx.Host().SetReturnData(ctx.ProgramID(), ret)
	}
	return nil
}

// stageError types a plain error with its failing stage. An already
// structured error passes through verbatim, which keeps a callee's failure
// intact across nested calls.
func stageError(kind program.Kind, code program.Code, name string, err error) error {
	var e *program.Error
	if errors.As(err, &e) {
		return err
	}
	return program.WrapError(kind, code, name, err)
}
