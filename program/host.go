package program

import "xdao.co/solframe/pubkey"

// Host exposes the platform capabilities a program may consume during a
// call. Implementations are opaque to the framework: a rent calculator, a
// synchronous nested-call dispatcher, a return-data side channel and a log
// sink.
type Host interface {
	// Rent returns the platform rent parameters.
	Rent() (Rent, error)

	// Invoke transfers control synchronously to the instruction's target
	// program. signerSeeds carries the exact seed bytes (bump included) for
	// every derived address that must sign in the callee frame; the host
	// re-derives each set with the calling program's identity. Any failure
	// raised by the target propagates verbatim.
	Invoke(ix Instruction, signerSeeds [][][]byte) error

	// SetReturnData publishes an operation's raw result bytes to the side
	// channel read by the caller. Empty data clears the channel.
	SetReturnData(programID pubkey.Pubkey, data []byte)

	// ReturnData reads the side channel: the publishing program and the
	// last published bytes.
	ReturnData() (pubkey.Pubkey, []byte)

	// Log records a program-emitted message.
	Log(msg string)
}
