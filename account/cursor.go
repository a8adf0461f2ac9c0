package account

import (
	"fmt"

	"xdao.co/solframe/program"
)

// Cursor is the single forward-only reader over a call's raw account list.
// All declarations in a call share one cursor; none may rewind or
// re-consume.
type Cursor struct {
	infos []*program.AccountInfo
	pos   int
}

func NewCursor(infos []*program.AccountInfo) *Cursor {
	return &Cursor{infos: infos}
}

// Remaining reports how many accounts have not been consumed yet.
func (c *Cursor) Remaining() int {
	return len(c.infos) - c.pos
}

// Take consumes exactly n accounts. On shortfall it fails without consuming
// any, declaring what was required and what remained.
func (c *Cursor) Take(n int, what string) ([]*program.AccountInfo, error) {
	if c.Remaining() < n {
		return nil, program.NewError(program.KindArity, program.CodeAccountShortfall,
			fmt.Sprintf("%s: expected >=%d accounts, got %d", what, n, c.Remaining()))
	}
	out := c.infos[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// TakeRemaining consumes every account left on the cursor.
func (c *Cursor) TakeRemaining() []*program.AccountInfo {
	out := c.infos[c.pos:]
	c.pos = len(c.infos)
	return out
}

func (c *Cursor) snapshot() int {
	return c.pos
}

// restore rewinds to a snapshot. Only the composite walker uses it, and only
// on a failed decode, so the forward-only contract holds for successful
// consumption.
func (c *Cursor) restore(pos int) {
	c.pos = pos
}
