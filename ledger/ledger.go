package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	prefixContract     = 0x08
	prefixContractName = 0x09
	keyNextID          = 0x0a
	prefixAudit        = 0x0c
	keyAuditHeight     = 0x0d
	keyInvocations     = 0x0e
	prefixStorage      = 0x70
)

// Ledger hosts protocol components. Ledger is safe for concurrent use.
type Ledger struct {
	log     *zap.Logger
	metrics *metrics

	mtx         sync.Mutex
	store       storage.Store
	height      uint64
	invocations uint64
}

// Result is a result of the committed invocation.
type Result struct {
	// Sequence number of the invocation starting from 0.
	Invocation uint64
	// Notifications emitted by the invocation in emission order.
	Events []state.NotificationEvent
}

// Option is a Ledger construction option.
type Option func(*Ledger)

// WithLogger sets logger of the Ledger. Nop logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(x *Ledger) {
		if l != nil {
			x.log = l
		}
	}
}

// WithMetrics makes Ledger to register its metrics in reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(x *Ledger) {
		x.metrics = newMetrics(reg)
	}
}

// New returns Ledger working over the given store. Store is owned by the
// Ledger after the call and released by Close.
func New(st storage.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		log:   zap.NewNop(),
		store: st,
	}

	for i := range opts {
		opts[i](l)
	}

	if l.metrics == nil {
		l.metrics = newMetrics(nil)
	}

	var err error

	l.height, err = getUint64(st, []byte{keyAuditHeight})
	if err != nil {
		return nil, fmt.Errorf("read audit log height: %w", err)
	}

	l.invocations, err = getUint64(st, []byte{keyInvocations})
	if err != nil {
		return nil, fmt.Errorf("read invocation counter: %w", err)
	}

	l.metrics.height.Set(float64(l.height))

	return l, nil
}

// Open opens the store configured by cfg and returns Ledger working over it.
func Open(cfg dbconfig.DBConfiguration, opts ...Option) (*Ledger, error) {
	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	l, err := New(st, opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return l, nil
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.store.Close()
}

// ErrFault is returned when the invoked function panics.
var ErrFault = common.NewStateError("invocation fault")

// Invoke runs f on behalf of the sender as a single atomic operation named
// by method. If f returns an error, all changes made by f are discarded and
// the error is returned as is. Panic of f is returned as ErrFault with the
// changes discarded the same way.
func (l *Ledger) Invoke(sender util.Uint160, method string, f func(*Context) error) (*Result, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	start := time.Now()
	inv := newInvocation(l.store, sender)

	err := run(f, inv.root())
	if err != nil {
		l.metrics.invocation(method, false, time.Since(start))
		l.log.Debug("invocation failed",
			zap.String("method", method),
			zap.Stringer("sender", sender),
			zap.Error(err))
		return nil, err
	}

	res, err := l.commit(inv, method)
	if err != nil {
		l.metrics.invocation(method, false, time.Since(start))
		l.log.Error("failed to commit invocation",
			zap.String("method", method),
			zap.Stringer("sender", sender),
			zap.Error(err))
		return nil, err
	}

	l.metrics.invocation(method, true, time.Since(start))
	for i := range res.Events {
		l.metrics.events.WithLabelValues(res.Events[i].Name).Inc()
	}
	l.metrics.height.Set(float64(l.height))

	l.log.Debug("invocation committed",
		zap.String("method", method),
		zap.Stringer("sender", sender),
		zap.Uint64("invocation", res.Invocation),
		zap.Int("events", len(res.Events)))

	return res, nil
}

// Read runs f against the current state. Changes made by f are never
// persisted and its notifications are dropped.
func (l *Ledger) Read(f func(*Context) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return run(f, newInvocation(l.store, util.Uint160{}).root())
}

func run(f func(*Context) error, ic *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFault, r)
		}
	}()

	return f(ic)
}

// AuditHeight returns number of entries in the audit log.
func (l *Ledger) AuditHeight() uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.height
}

func (l *Ledger) commit(inv *invocation, method string) (*Result, error) {
	res := &Result{
		Invocation: l.invocations,
		Events:     inv.events,
	}

	for i := range inv.events {
		ev := Event{
			Index:             l.height + uint64(i),
			Invocation:        res.Invocation,
			Method:            method,
			NotificationEvent: inv.events[i],
		}

		data, err := ev.Bytes()
		if err != nil {
			return nil, fmt.Errorf("encode audit log entry #%d: %w", i, err)
		}

		inv.store.Put(auditKey(ev.Index), data)
	}

	height := l.height + uint64(len(inv.events))

	putUint64(inv.store, []byte{keyAuditHeight}, height)
	putUint64(inv.store, []byte{keyInvocations}, l.invocations+1)

	_, err := inv.store.PersistSync()
	if err != nil {
		return nil, fmt.Errorf("persist invocation changes: %w", err)
	}

	l.height = height
	l.invocations++

	return res, nil
}

type getter interface {
	Get([]byte) ([]byte, error)
}

func getUint64(st getter, key []byte) (uint64, error) {
	data, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid counter length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func putUint64(st *storage.MemCachedStore, key []byte, v uint64) {
	st.Put(key, binary.BigEndian.AppendUint64(nil, v))
}

func auditKey(index uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{prefixAudit}, index)
}
