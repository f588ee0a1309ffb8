// Package errors implements the runtime's three-class error taxonomy:
// Transient (temporary, e.g. backpressure), Invalid (misuse of an API, not
// retryable), and Fatal (unrecoverable, stop processing).
//
// Most operator-facing conditions in streamforge are not represented as
// errors at all: a full queue returns false from TryPush, a closed queue
// returns false from Pop, and a dropped event increments a counter. This
// package exists for the smaller surface of genuine errors: lifecycle
// misuse, invalid graph construction, and bad configuration.
//
// Use the standard sentinel errors for known conditions and Wrap/
// WrapTransient/WrapFatal/WrapInvalid to attach component and operation
// context to anything else:
//
//	if err := op.Init(); err != nil {
//	    return errors.WrapFatal(err, "runtime", "Start", "initialize operator")
//	}
package errors
