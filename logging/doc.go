// Package logging arbitrates the two process-wide native logging slots.
//
// The native engine has exactly one log callback hook and one file logging
// configuration. Multiple independent host contexts may race to claim them,
// so each slot holds at most one owner:
//
//   - The callback slot is owned by a bridge callback. SetCallback installs
//     a wrapper forwarding every native log message to the owning callback;
//     a second caller loses without disturbing the installed owner.
//   - The file slot is owned by a capability token (a UUID minted by the
//     claiming context). Reconfiguration by the owner succeeds repeatedly;
//     a different token gets the distinguished conflict status rather than
//     an ordinary failure, so callers can tell "lost the race" from
//     "invalid input". A nil configuration releases the capability.
//
// Both slots share one reader/writer lock: log emission takes the read side
// so concurrent messages flow while no writer is installing or removing the
// callback.
package logging
