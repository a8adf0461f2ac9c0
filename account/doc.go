// Package account implements the resource-handle lifecycle: typed, possibly
// composite declarations of the accounts an operation needs, with decode,
// validate and cleanup capabilities.
//
// Declarations compose three ways:
//   - leaves (Unchecked, Signer, Owned, Program, Data, Rest) consume
//     accounts from the shared cursor;
//   - wrappers (Mut, Funding, Seeded, Init) delegate to an inner declaration
//     and add their own checks, consuming zero additional accounts;
//   - plain structs of declarations are walked reflectively in field order.
//
// A single forward-only cursor is shared across all declarations in a call.
// A declaration that fails to decode consumes nothing, so the shortfall
// never leaks into the next declaration. Validation is fail-fast with typed
// reasons and never mutates external state.
package account
