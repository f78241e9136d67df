// Package remotetest provides an in-memory remote.Store for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"taskdeck/internal/remote"
)

// Call records one invocation of the fake.
type Call struct {
	Op    string
	Table string
	IDs   []string
}

// Fake is an in-memory remote.Store with failure injection.
type Fake struct {
	mu     sync.Mutex
	tables map[string]map[string]remote.Row
	fail   map[string]error
	calls  []Call

	// BeforeCall runs before each operation without the fake's lock held,
	// letting tests interleave local mutations with an in-flight call.
	BeforeCall func(op, table string)
}

// NewFake creates an empty fake.
func NewFake() *Fake {
	return &Fake{
		tables: map[string]map[string]remote.Row{},
		fail:   map[string]error{},
	}
}

// Put stores rows directly, bypassing failure injection.
func (f *Fake) Put(table string, rows ...remote.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		f.put(table, row)
	}
}

// Rows returns the rows of table ordered by id.
func (f *Fake) Rows(table string) []remote.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.Row, 0, len(f.tables[table]))
	for _, row := range f.tables[table] {
		out = append(out, copyRow(row))
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]["id"]) < fmt.Sprint(out[j]["id"])
	})
	return out
}

// FailOn makes op ("select", "upsert", "delete", "invoke", "signout") on
// table return err. A nil err clears the failure.
func (f *Fake) FailOn(op, table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op+":"+table)
		return
	}
	f.fail[op+":"+table] = err
}

// Calls returns the recorded calls of op on table.
func (f *Fake) Calls(op, table string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Op == op && c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

// History returns every recorded call in order.
func (f *Fake) History() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) begin(op, table string, ids []string) error {
	if f.BeforeCall != nil {
		f.BeforeCall(op, table)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Table: table, IDs: append([]string(nil), ids...)})
	return f.fail[op+":"+table]
}

// Select implements remote.Store.
func (f *Fake) Select(ctx context.Context, table string, filter remote.Filter) ([]remote.Row, error) {
	if err := f.begin("select", table, nil); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []remote.Row
	for _, row := range f.Rows(table) {
		if matches(row, filter) {
			out = append(out, row)
		}
	}
	return out, nil
}

// Upsert implements remote.Store.
func (f *Fake) Upsert(ctx context.Context, table string, rows []remote.Row) error {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = fmt.Sprint(row["id"])
	}
	if err := f.begin("upsert", table, ids); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		f.put(table, row)
	}
	return nil
}

// Delete implements remote.Store.
func (f *Fake) Delete(ctx context.Context, table string, ids []string) error {
	if err := f.begin("delete", table, ids); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.tables[table], id)
	}
	return nil
}

// Invoke implements remote.Store by echoing the payload.
func (f *Fake) Invoke(ctx context.Context, function string, payload interface{}) (json.RawMessage, error) {
	if err := f.begin("invoke", function, nil); err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

// SignOut implements remote.Store.
func (f *Fake) SignOut(ctx context.Context) error {
	return f.begin("signout", "", nil)
}

func (f *Fake) put(table string, row remote.Row) {
	if f.tables[table] == nil {
		f.tables[table] = map[string]remote.Row{}
	}
	f.tables[table][fmt.Sprint(row["id"])] = copyRow(row)
}

func matches(row remote.Row, filter remote.Filter) bool {
	for column, want := range filter {
		if fmt.Sprint(row[column]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func copyRow(row remote.Row) remote.Row {
	out := make(remote.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

var _ remote.Store = (*Fake)(nil)
