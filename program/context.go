package program

import "xdao.co/solframe/pubkey"

// Funder supplies rent top-ups for accounts created during a call, and
// optionally invokes account creation itself.
type Funder interface {
	// CanCreate reports whether the funder can invoke account creation
	// directly. A funder that cannot is only ever asked to top up a
	// balance; it must have pre-funded creation out of band.
	CanCreate() bool

	// FundRent transfers exactly lamports to the target account. The
	// framework only ever requests the shortfall up to the rent-exempt
	// minimum, never a withdrawal.
	FundRent(to *AccountInfo, lamports uint64, ctx *Context) error

	// SignerSeeds returns the derived-address seeds (bump included) the
	// funder signs with, or nil for keypair-backed funders.
	SignerSeeds() [][]byte

	// AccountInfo returns the funding account.
	AccountInfo() *AccountInfo
}

// Context is the per-call cache: the executing program's identity, the host
// capabilities, lazily fetched rent parameters, an optional funder, and the
// signer-seed sets accumulated for nested calls.
//
// A Context is created at call start, exclusively owned by the single
// in-flight call, and discarded at call end. It is never a process-global
// and never shared across calls.
type Context struct {
	programID   pubkey.Pubkey
	host        Host
	rent        *Rent
	funder      Funder
	signerSeeds [][][]byte
}

// NewContext builds the context for one call.
func NewContext(programID pubkey.Pubkey, host Host) *Context {
	return &Context{programID: programID, host: host}
}

// ProgramID returns the identity of the executing program.
func (c *Context) ProgramID() pubkey.Pubkey {
	return c.programID
}

// Host returns the platform capabilities.
func (c *Context) Host() Host {
	return c.host
}

// Rent returns the platform rent parameters, fetching them from the host at
// most once per call.
func (c *Context) Rent() (Rent, error) {
	if c.rent != nil {
		return *c.rent, nil
	}
	r, err := c.host.Rent()
	if err != nil {
		return Rent{}, WrapError(KindInternal, CodeInternal, "fetching rent parameters", err)
	}
	c.rent = &r
	return r, nil
}

// Funder returns the cached funder, or nil when none was declared.
func (c *Context) Funder() Funder {
	return c.funder
}

// SetFunder caches the call's rent funder. Declarations that fund account
// creation must validate before any declaration that consumes the funder.
func (c *Context) SetFunder(f Funder) {
	c.funder = f
}

// AddSignerSeeds records a derived-address seed set (bump included) to carry
// on subsequent nested calls from this call.
func (c *Context) AddSignerSeeds(seeds [][]byte) {
	c.signerSeeds = append(c.signerSeeds, seeds)
}

// SignerSeeds returns the seed sets accumulated so far.
func (c *Context) SignerSeeds() [][][]byte {
	return c.signerSeeds
}

// Log forwards a program message to the host's log sink.
func (c *Context) Log(msg string) {
	c.host.Log(msg)
}
