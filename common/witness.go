package common

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrOwnerWitnessFailed appears when the method must be called by the
	// owner of the component but was not.
	ErrOwnerWitnessFailed = NewAuthorizationError("owner witness check failed")
	// ErrWitnessFailed appears when the method must be called using certain
	// account but was not.
	ErrWitnessFailed = NewAuthorizationError("witness check failed")
	// ErrCallerNotAllowed appears when the method must be called from the
	// certain component but was not.
	ErrCallerNotAllowed = NewAuthorizationError("calling component is not allowed")
)

// Witnesser is an execution context able to verify the caller.
type Witnesser interface {
	// CheckWitness checks whether h is the sender of the invocation or the
	// component that called the currently executing one.
	CheckWitness(h util.Uint160) bool
	// CallingScriptHash returns hash of the component that called the
	// currently executing one.
	CallingScriptHash() util.Uint160
}

// CheckOwnerWitness checks witness of the component owner.
// It fails with ErrOwnerWitnessFailed.
func CheckOwnerWitness(w Witnesser, owner util.Uint160) error {
	return checkWitness(w, owner, ErrOwnerWitnessFailed)
}

// CheckWitness checks witness of the passed account.
// It fails with ErrWitnessFailed.
func CheckWitness(w Witnesser, h util.Uint160) error {
	return checkWitness(w, h, ErrWitnessFailed)
}

// CheckCaller checks that the currently executing component was called by
// the allowed one. It fails with ErrCallerNotAllowed.
func CheckCaller(w Witnesser, allowed util.Uint160) error {
	if caller := w.CallingScriptHash(); !caller.Equals(allowed) {
		return fmt.Errorf("%w: %s", ErrCallerNotAllowed, caller.StringLE())
	}
	return nil
}

func checkWitness(w Witnesser, h util.Uint160, e error) error {
	if !w.CheckWitness(h) {
		return e
	}
	return nil
}
