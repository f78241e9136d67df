// Package syncengine reconciles the local store with the remote row store:
// pulling projects and tasks, pushing local changes and confirming pending
// deletions. Failures are logged and reported, never returned as errors.
package syncengine

import (
	"context"
	"sync"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/logging"
	"taskdeck/internal/remote"
	"taskdeck/internal/store"
)

// LocalStore is the part of the local store the engine works through. Every
// method re-reads current state, so calls made after a remote round trip see
// local mutations that happened during it.
type LocalStore interface {
	Snapshot() domain.State
	ApplyRemoteProject(row remote.Row) (store.ApplyOutcome, error)
	ApplyRemoteTask(row remote.Row) (store.ApplyOutcome, error)
	ConfirmDeleted(kind domain.EntityKind, ids []string)
	MarkPushed(at time.Time)
}

// Engine runs sync cycles against one remote store.
type Engine struct {
	local  LocalStore
	remote remote.Store
	now    func() time.Time

	cycle sync.Mutex

	projectMapper *domain.ProjectMapper
	taskMapper    *domain.TaskMapper
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for the push cursor and session expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine.
func New(local LocalStore, rs remote.Store, opts ...Option) *Engine {
	e := &Engine{
		local:         local,
		remote:        rs,
		now:           time.Now,
		projectMapper: domain.NewProjectMapper(),
		taskMapper:    domain.NewTaskMapper(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncProjects pulls the signed-in user's projects.
func (e *Engine) SyncProjects(ctx context.Context) Result {
	return e.pull(ctx, domain.KindProject, remote.TableProjects, e.local.ApplyRemoteProject)
}

// SyncTasks pulls the signed-in user's tasks, active and archived.
func (e *Engine) SyncTasks(ctx context.Context) Result {
	return e.pull(ctx, domain.KindTask, remote.TableTasks, e.local.ApplyRemoteTask)
}

func (e *Engine) pull(ctx context.Context, kind domain.EntityKind, table string, apply func(remote.Row) (store.ApplyOutcome, error)) Result {
	res := Result{Step: StepPull, Kind: kind}

	userID, reason := e.gate(e.local.Snapshot(), true)
	if reason != "" {
		res.Skipped = reason
		return res
	}

	rows, err := e.remote.Select(ctx, table, remote.Filter{"owner": userID})
	if err != nil {
		res.Err = err
		logging.Errorf("sync: pull %s failed: %v", table, err)
		return res
	}

	for _, row := range rows {
		outcome, err := apply(row)
		if err != nil {
			res.Invalid++
			logging.Warnf("sync: skipping %s row: %v", table, err)
			continue
		}
		switch outcome {
		case store.Applied:
			res.Applied++
		case store.Tombstoned:
			res.Discarded++
		case store.Stale:
			res.Unchanged++
		}
	}
	logging.Debugf("sync: pulled %d %s rows (%d applied, %d discarded)", len(rows), table, res.Applied, res.Discarded)
	return res
}

// SyncDeletes issues one batched remote delete per non-empty tombstone set and
// clears the confirmed ids. A failed delete leaves its set untouched for the
// next cycle. Only a session is required.
func (e *Engine) SyncDeletes(ctx context.Context) []Result {
	return []Result{
		e.pushDeletes(ctx, domain.KindProject, remote.TableProjects),
		e.pushDeletes(ctx, domain.KindTask, remote.TableTasks),
	}
}

func (e *Engine) pushDeletes(ctx context.Context, kind domain.EntityKind, table string) Result {
	res := Result{Step: StepDelete, Kind: kind}

	snap := e.local.Snapshot()
	if _, reason := e.gate(snap, false); reason != "" {
		res.Skipped = reason
		return res
	}
	ids := snap.PendingDeletes.IDs(kind)
	if len(ids) == 0 {
		res.Skipped = ReasonNothingToDo
		return res
	}
	ids = append([]string(nil), ids...)

	if err := e.remote.Delete(ctx, table, ids); err != nil {
		res.Err = err
		logging.Errorf("sync: delete %d %s failed: %v", len(ids), table, err)
		return res
	}
	e.local.ConfirmDeleted(kind, ids)
	res.Applied = len(ids)
	return res
}

// PushChanges upserts projects and tasks changed since the last successful
// push. Tombstoned ids are never pushed, and neither is a row the remote
// already holds a strictly newer version of; the pull that follows brings
// that version down. The cursor only advances when both kinds were pushed.
func (e *Engine) PushChanges(ctx context.Context) []Result {
	started := e.now()
	snap := e.local.Snapshot()

	userID, reason := e.gate(snap, true)
	if reason != "" {
		return []Result{
			{Step: StepPush, Kind: domain.KindProject, Skipped: reason},
			{Step: StepPush, Kind: domain.KindTask, Skipped: reason},
		}
	}

	changed := func(updated time.Time) bool {
		return snap.LastPushedAt == nil || updated.After(*snap.LastPushedAt)
	}

	var projectRows []remote.Row
	for _, p := range snap.Projects {
		if changed(p.UpdatedAt) && !snap.PendingDeletes.Has(domain.KindProject, p.ID) {
			projectRows = append(projectRows, e.projectMapper.ToRemote(p, userID))
		}
	}

	var taskRows []remote.Row
	for _, group := range [][]domain.Task{snap.Tasks, snap.ArchivedTasks} {
		for _, t := range group {
			if changed(t.UpdatedAt) && !snap.PendingDeletes.Has(domain.KindTask, t.ID) {
				taskRows = append(taskRows, e.taskMapper.ToRemote(t, userID))
			}
		}
	}

	results := []Result{
		e.upsert(ctx, domain.KindProject, remote.TableProjects, userID, projectRows),
		e.upsert(ctx, domain.KindTask, remote.TableTasks, userID, taskRows),
	}
	if results[0].Err == nil && results[1].Err == nil {
		e.local.MarkPushed(started)
	}
	return results
}

func (e *Engine) upsert(ctx context.Context, kind domain.EntityKind, table, userID string, rows []remote.Row) Result {
	res := Result{Step: StepPush, Kind: kind}
	if len(rows) == 0 {
		res.Skipped = ReasonNothingToDo
		return res
	}

	current, err := e.remote.Select(ctx, table, remote.Filter{"owner": userID})
	if err != nil {
		res.Err = err
		logging.Errorf("sync: push %s failed reading remote versions: %v", table, err)
		return res
	}
	rows, res.Unchanged = dropSuperseded(rows, current)
	if len(rows) == 0 {
		res.Skipped = ReasonNothingToDo
		return res
	}

	if err := e.remote.Upsert(ctx, table, rows); err != nil {
		res.Err = err
		logging.Errorf("sync: push %d %s failed: %v", len(rows), table, err)
		return res
	}
	res.Applied = len(rows)
	return res
}

// dropSuperseded removes the outgoing rows whose remote copy carries a later
// updated_at and reports how many were removed.
func dropSuperseded(rows, current []remote.Row) ([]remote.Row, int) {
	remoteUpdated := make(map[string]time.Time, len(current))
	for _, row := range current {
		id, ok := domain.RowID(row)
		if !ok {
			continue
		}
		updated, err := domain.ParseRemoteTime(row["updated_at"])
		if err != nil {
			continue
		}
		remoteUpdated[id] = updated
	}

	kept := make([]remote.Row, 0, len(rows))
	for _, row := range rows {
		id, _ := domain.RowID(row)
		theirs, ok := remoteUpdated[id]
		if ok {
			ours, err := domain.ParseRemoteTime(row["updated_at"])
			if err == nil && theirs.After(ours) {
				logging.Debugf("sync: not pushing %s, remote copy is newer", id)
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}

// SyncAll runs one full cycle: deletes, then local changes, then pulls.
// Deleting first keeps a stale remote row from being pulled back in while
// its deletion is still pending. Concurrent calls are serialized.
func (e *Engine) SyncAll(ctx context.Context) Report {
	e.cycle.Lock()
	defer e.cycle.Unlock()

	report := Report{StartedAt: e.now()}
	report.Results = append(report.Results, e.SyncDeletes(ctx)...)
	report.Results = append(report.Results, e.PushChanges(ctx)...)
	report.Results = append(report.Results, e.SyncProjects(ctx), e.SyncTasks(ctx))
	report.Duration = e.now().Sub(report.StartedAt)
	return report
}

// Run performs a cycle immediately and then every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report := e.SyncAll(ctx)
		if failed := report.Failed(); len(failed) > 0 {
			logging.Warnf("sync: cycle finished with %d failure(s)", len(failed))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// gate returns the signed-in user id, or the reason the step must be skipped.
func (e *Engine) gate(snap domain.State, needPro bool) (string, string) {
	if snap.Session == nil || snap.User == nil {
		return "", ReasonNoSession
	}
	if snap.Session.Expired(e.now()) {
		return "", ReasonSessionExpired
	}
	if needPro && (snap.Profile == nil || !snap.Profile.IsPro) {
		return "", ReasonNotPro
	}
	return snap.User.ID, ""
}
