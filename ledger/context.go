package ledger

import (
	"encoding/binary"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// invocation is a state shared by all frames of a single Ledger invocation.
type invocation struct {
	store  *storage.MemCachedStore
	sender util.Uint160
	events []state.NotificationEvent
}

func newInvocation(st storage.Store, sender util.Uint160) *invocation {
	return &invocation{
		store:  storage.NewMemCachedStore(st),
		sender: sender,
	}
}

func (x *invocation) root() *Context {
	return &Context{
		inv:       x,
		executing: x.sender,
	}
}

// Context is an execution frame of the invocation. Root frame executes on
// behalf of the sender, component frames are entered via Enter.
type Context struct {
	inv *invocation

	executing util.Uint160
	calling   util.Uint160

	// depth is 0 for the root frame.
	depth int
	id    int32
}

// Sender returns account the invocation is performed on behalf of.
func (ic *Context) Sender() util.Uint160 {
	return ic.inv.sender
}

// ExecutingScriptHash returns address of the currently executing component.
// For the root frame it is the sender.
func (ic *Context) ExecutingScriptHash() util.Uint160 {
	return ic.executing
}

// CallingScriptHash returns address of the frame which entered the current
// one. For components called directly by the sender it is the sender.
func (ic *Context) CallingScriptHash() util.Uint160 {
	return ic.calling
}

// CheckWitness checks whether h is the sender of the invocation or the
// component that entered the current frame. Zero address never passes the
// check.
func (ic *Context) CheckWitness(h util.Uint160) bool {
	if h.Equals(util.Uint160{}) {
		return false
	}
	return h.Equals(ic.inv.sender) || (ic.depth > 0 && h.Equals(ic.calling))
}

// Enter returns frame of the component deployed at h called from the current
// frame. It fails with ErrContractNotFound if there is no such component.
func (ic *Context) Enter(h util.Uint160) (*Context, error) {
	cs, err := ic.GetContractByHash(h)
	if err != nil {
		return nil, err
	}

	return &Context{
		inv:       ic.inv,
		executing: h,
		calling:   ic.executing,
		depth:     ic.depth + 1,
		id:        cs.ID,
	}, nil
}

// Storage returns storage of the executing component. It panics if called in
// the root frame.
func (ic *Context) Storage() *Storage {
	if ic.depth == 0 {
		panic("storage accessed outside of component frame")
	}

	return &Storage{
		store:  ic.inv.store,
		prefix: storagePrefix(ic.id),
	}
}

func storagePrefix(id int32) []byte {
	prefix := make([]byte, 5)
	prefix[0] = prefixStorage
	binary.LittleEndian.PutUint32(prefix[1:], uint32(id))
	return prefix
}

// Notify emits notification with the given name and payload on behalf of
// the executing component.
func (ic *Context) Notify(name string, items ...stackitem.Item) {
	if items == nil {
		items = []stackitem.Item{}
	}

	ic.inv.events = append(ic.inv.events, state.NotificationEvent{
		ScriptHash: ic.executing,
		Name:       name,
		Item:       stackitem.NewArray(items),
	})
}
