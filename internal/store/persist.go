package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/logging"
)

// DefaultStorageKey is the key the state blob is stored under.
const DefaultStorageKey = "task-storage"

const storageVersion = 1

// KV is the subset of the key-value adapter the persister needs.
type KV interface {
	GetItem(ctx context.Context, key string) (*string, error)
	SetItem(ctx context.Context, key, value string) error
}

// envelope is the persisted document: {"state": {...}, "version": 1}.
type envelope struct {
	State   domain.State `json:"state"`
	Version int          `json:"version"`
}

// EncodeState serializes a snapshot the way it is persisted.
func EncodeState(state domain.State) (string, error) {
	data, err := json.Marshal(envelope{State: state, Version: storageVersion})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeState parses a persisted document.
func DecodeState(raw string) (domain.State, error) {
	env := envelope{State: domain.NewState()}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return domain.State{}, fmt.Errorf("decode persisted state: %w", err)
	}
	return normalize(env.State), nil
}

// Load reads the persisted state. ok is false when nothing is stored.
func Load(ctx context.Context, kv KV, key string) (state domain.State, ok bool, err error) {
	raw, err := kv.GetItem(ctx, key)
	if err != nil || raw == nil {
		return domain.State{}, false, err
	}
	state, err = DecodeState(*raw)
	if err != nil {
		return domain.State{}, false, err
	}
	return state, true, nil
}

// KVPersister writes snapshots to a KV on a background goroutine. Snapshots
// saved while a write is in flight are coalesced into the latest one.
type KVPersister struct {
	kv           KV
	key          string
	writeTimeout time.Duration

	mu      sync.Mutex
	pending *domain.State
	closed  bool

	signal  chan struct{}
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
}

// NewKVPersister starts the writer goroutine. Call Close to stop it.
func NewKVPersister(kv KV, key string, writeTimeout time.Duration) *KVPersister {
	if key == "" {
		key = DefaultStorageKey
	}
	p := &KVPersister{
		kv:           kv,
		key:          key,
		writeTimeout: writeTimeout,
		signal:       make(chan struct{}, 1),
		flushes:      make(chan chan struct{}),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Save queues state for writing and returns immediately.
func (p *KVPersister) Save(state domain.State) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.pending = &state
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot saved before the call is written.
func (p *KVPersister) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.flushes <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes the last pending snapshot and stops the writer.
func (p *KVPersister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.quit)
	<-p.done
	return nil
}

func (p *KVPersister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.signal:
			p.writePending()
		case ack := <-p.flushes:
			p.writePending()
			close(ack)
		case <-p.quit:
			p.writePending()
			return
		}
	}
}

func (p *KVPersister) writePending() {
	p.mu.Lock()
	state := p.pending
	p.pending = nil
	p.mu.Unlock()
	if state == nil {
		return
	}

	raw, err := EncodeState(*state)
	if err != nil {
		logging.Errorf("encode state: %v", err)
		return
	}

	ctx := context.Background()
	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}
	if err := p.kv.SetItem(ctx, p.key, raw); err != nil {
		logging.Warnf("persist state under %q failed: %v", p.key, err)
	}
}
