// Package ledgertest provides helpers for testing components hosted by the
// ledger.
package ledgertest

import (
	"testing"

	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewLedger returns Ledger over the in-memory store. Ledger is closed on test
// cleanup.
func NewLedger(tb testing.TB, opts ...ledger.Option) *ledger.Ledger {
	opts = append([]ledger.Option{ledger.WithLogger(zaptest.NewLogger(tb))}, opts...)

	l, err := ledger.New(storage.NewMemoryStore(), opts...)
	require.NoError(tb, err)

	tb.Cleanup(func() { _ = l.Close() })

	return l
}

// NewAccount returns address of the new random account.
func NewAccount(tb testing.TB) util.Uint160 {
	pk, err := keys.NewPrivateKey()
	require.NoError(tb, err)
	return pk.GetScriptHash()
}

// Invoker invokes ledger operations on behalf of the particular sender.
type Invoker struct {
	l      *ledger.Ledger
	sender util.Uint160
}

// NewInvoker returns Invoker sending invocations from the given account.
func NewInvoker(l *ledger.Ledger, sender util.Uint160) *Invoker {
	return &Invoker{l: l, sender: sender}
}

// WithSender returns Invoker with the same ledger and another sender.
func (x *Invoker) WithSender(sender util.Uint160) *Invoker {
	return NewInvoker(x.l, sender)
}

// Sender returns account the invocations are sent from.
func (x *Invoker) Sender() util.Uint160 {
	return x.sender
}

// Ledger returns the ledger invocations are sent to.
func (x *Invoker) Ledger() *ledger.Ledger {
	return x.l
}

// Invoke invokes f and checks that it succeeds.
func (x *Invoker) Invoke(tb testing.TB, method string, f func(*ledger.Context) error) *ledger.Result {
	res, err := x.l.Invoke(x.sender, method, f)
	require.NoError(tb, err, "method '%s'", method)
	return res
}

// InvokeFail invokes f and checks that it fails with the expected error.
func (x *Invoker) InvokeFail(tb testing.TB, expected error, method string, f func(*ledger.Context) error) {
	res, err := x.l.Invoke(x.sender, method, f)
	require.ErrorIs(tb, err, expected, "method '%s'", method)
	require.Nil(tb, res)
}

// Read runs f against the current ledger state and checks that it succeeds.
func (x *Invoker) Read(tb testing.TB, f func(*ledger.Context) error) {
	require.NoError(tb, x.l.Read(f))
}

// EventNames returns names of the notifications emitted by the invocation.
func EventNames(res *ledger.Result) []string {
	names := make([]string, len(res.Events))
	for i := range res.Events {
		names[i] = res.Events[i].Name
	}
	return names
}
