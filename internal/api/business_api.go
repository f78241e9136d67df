package api

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/domain"
	"taskdeck/internal/errors"
	"taskdeck/internal/services"
	"taskdeck/internal/store"
	"taskdeck/internal/syncengine"
	"taskdeck/internal/timeutil"
	"taskdeck/internal/validation"
)

// TaskFilter selects tasks for ListTasks. Zero fields match everything.
type TaskFilter struct {
	ProjectID string
	Status    domain.TaskStatus
	Tag       string
	Text      string // case-insensitive match on title or subtask titles
	Archived  bool
}

// TaskUpdate lists the task fields to change. Nil fields are kept.
type TaskUpdate struct {
	Title        *string
	ProjectID    *string
	Status       *string
	Priority     *string
	Tag          *string
	ClearTag     bool
	DueDate      *string // YYYY-MM-DD
	ClearDueDate bool
	CompletedAt  *time.Time
}

// FocusStatus describes the running focus session.
type FocusStatus struct {
	Task      domain.Task `json:"task"`
	StartedAt time.Time   `json:"startedAt"`
	ElapsedMs int64       `json:"elapsedMs"`
}

// Status summarizes identity and sync state.
type Status struct {
	User           *domain.User          `json:"user,omitempty"`
	Pro            bool                  `json:"pro"`
	SessionExpires *time.Time            `json:"sessionExpires,omitempty"`
	RemoteEnabled  bool                  `json:"remoteEnabled"`
	PendingDeletes domain.PendingDeletes `json:"pendingDeletes"`
	LastPushedAt   *time.Time            `json:"lastPushedAt,omitempty"`
	Focus          *FocusStatus          `json:"focus,omitempty"`
	Sort           domain.SortPreference `json:"sort"`
}

// BusinessAPI is the set of operations the CLI and the HTTP server offer.
type BusinessAPI interface {
	// ========== Projects ==========

	CreateProject(ctx context.Context, name, color string) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, name, color *string) (*domain.Project, error)
	// DeleteProject removes the project only; its tasks are kept.
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// ========== Tasks ==========

	CreateTask(ctx context.Context, projectID, title, priority string) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ArchiveTask(ctx context.Context, id string) error
	RestoreTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	SetSort(ctx context.Context, field string, ascending bool) error

	AddSubtask(ctx context.Context, taskID, title string) (*domain.Subtask, error)
	ToggleSubtask(ctx context.Context, taskID, subtaskID string) error
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) error

	// ========== Time tracking ==========

	AddTime(ctx context.Context, taskID string, hours, minutes, seconds int64) (*domain.Task, error)
	StartFocus(ctx context.Context, taskID string) (*FocusStatus, error)
	// StopFocus ends the focus session and returns the credited milliseconds.
	StopFocus(ctx context.Context) (int64, error)
	CurrentFocus(ctx context.Context) (*FocusStatus, error)

	// ========== Derived data ==========

	ProjectStats(ctx context.Context, projectID string) (services.ProjectStats, error)
	// Chart returns hours per day; an empty projectID covers every project.
	Chart(ctx context.Context, projectID, mode string, weekOffset int) ([]services.DayPoint, error)

	// ========== Account and sync ==========

	Login(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*Status, error)
	Sync(ctx context.Context) (*syncengine.Report, error)
}

// businessAPIImpl implements BusinessAPI over the local store
type businessAPIImpl struct {
	store            *store.Store
	engine           *syncengine.Engine
	decoder          *auth.Decoder
	now              func() time.Time
	taskValidator    *validation.TaskValidator
	projectValidator *validation.ProjectValidator
}

// NewBusinessAPI creates a BusinessAPI. engine may be nil when no remote
// store is configured.
func NewBusinessAPI(st *store.Store, engine *syncengine.Engine, decoder *auth.Decoder, cfg *config.Config) BusinessAPI {
	return newBusinessAPI(st, engine, decoder, cfg, time.Now)
}

func newBusinessAPI(st *store.Store, engine *syncengine.Engine, decoder *auth.Decoder, cfg *config.Config, now func() time.Time) *businessAPIImpl {
	v := validation.NewValidatorWithConfig(cfg)
	return &businessAPIImpl{
		store:            st,
		engine:           engine,
		decoder:          decoder,
		now:              now,
		taskValidator:    validation.NewTaskValidatorWithValidator(v),
		projectValidator: validation.NewProjectValidatorWithValidator(v),
	}
}

// invalid converts validation failures into application errors.
func invalid(err error) error {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return ve.ToAppError()
	}
	return err
}

// ========== Projects ==========

func (b *businessAPIImpl) CreateProject(ctx context.Context, name, color string) (*domain.Project, error) {
	if err := b.projectValidator.ValidateProjectForCreation(name, color); err != nil {
		return nil, invalid(err)
	}
	p := b.store.AddProject(strings.TrimSpace(name), color)
	return &p, nil
}

func (b *businessAPIImpl) UpdateProject(ctx context.Context, id string, name, color *string) (*domain.Project, error) {
	patch := store.ProjectPatch{Color: color}
	if name != nil {
		if err := b.projectValidator.ValidateName(*name); err != nil {
			return nil, invalid(err)
		}
		trimmed := strings.TrimSpace(*name)
		patch.Name = &trimmed
	}
	if color != nil {
		if err := b.projectValidator.ValidateColor(*color); err != nil {
			return nil, invalid(err)
		}
	}

	if !b.store.UpdateProject(id, patch) {
		return nil, errors.NewNotFoundError("project", id)
	}
	p, _ := b.store.Snapshot().FindProject(id)
	return &p, nil
}

func (b *businessAPIImpl) DeleteProject(ctx context.Context, id string) error {
	if !b.store.DeleteProject(id) {
		return errors.NewNotFoundError("project", id)
	}
	return nil
}

func (b *businessAPIImpl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return b.store.Snapshot().Projects, nil
}

// ========== Tasks ==========

func (b *businessAPIImpl) CreateTask(ctx context.Context, projectID, title, priority string) (*domain.Task, error) {
	p := domain.Priority(priority)
	if p == "" {
		p = domain.PriorityMedium
	}
	if err := b.taskValidator.ValidateTaskForCreation(title, p); err != nil {
		return nil, invalid(err)
	}
	if _, ok := b.store.Snapshot().FindProject(projectID); !ok {
		return nil, errors.NewNotFoundError("project", projectID)
	}

	t := b.store.AddTask(projectID, strings.TrimSpace(title), p)
	return &t, nil
}

// findAnyTask looks in the active collection first, then the archive.
func findAnyTask(st domain.State, id string) (domain.Task, bool) {
	if t, ok := st.FindTask(id); ok {
		return t, true
	}
	for _, t := range st.ArchivedTasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func (b *businessAPIImpl) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, ok := findAnyTask(b.store.Snapshot(), id)
	if !ok {
		return nil, errors.NewNotFoundError("task", id)
	}
	return &t, nil
}

func (b *businessAPIImpl) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error) {
	patch, err := b.taskPatch(update)
	if err != nil {
		return nil, err
	}
	if patch.ProjectID != nil {
		if _, ok := b.store.Snapshot().FindProject(*patch.ProjectID); !ok {
			return nil, errors.NewNotFoundError("project", *patch.ProjectID)
		}
	}

	if !b.store.UpdateTask(id, patch) {
		return nil, errors.NewNotFoundError("task", id)
	}
	t, _ := b.store.Snapshot().FindTask(id)
	return &t, nil
}

func (b *businessAPIImpl) taskPatch(update TaskUpdate) (store.TaskPatch, error) {
	patch := store.TaskPatch{
		ProjectID:    update.ProjectID,
		Tag:          update.Tag,
		ClearTag:     update.ClearTag,
		ClearDueDate: update.ClearDueDate,
		CompletedAt:  update.CompletedAt,
	}

	if update.Title != nil {
		title, err := b.taskValidator.GetValidTitle(*update.Title)
		if err != nil {
			return patch, invalid(err)
		}
		patch.Title = &title
	}
	if update.Status != nil {
		status := domain.TaskStatus(*update.Status)
		if err := b.taskValidator.ValidateStatus(status); err != nil {
			return patch, invalid(err)
		}
		patch.Status = &status
	}
	if update.Priority != nil {
		priority := domain.Priority(*update.Priority)
		if err := b.taskValidator.ValidatePriority(priority); err != nil {
			return patch, invalid(err)
		}
		patch.Priority = &priority
	}
	if update.DueDate != nil {
		due, err := timeutil.ParseDayKey(*update.DueDate)
		if err != nil {
			return patch, errors.NewInvalidInputError("dueDate", *update.DueDate, "expected YYYY-MM-DD")
		}
		patch.DueDate = &due
	}
	return patch, nil
}

func (b *businessAPIImpl) DeleteTask(ctx context.Context, id string) error {
	if !b.store.DeleteTask(id) {
		return errors.NewNotFoundError("task", id)
	}
	return nil
}

func (b *businessAPIImpl) ArchiveTask(ctx context.Context, id string) error {
	if !b.store.ArchiveTask(id) {
		return errors.NewNotFoundError("task", id)
	}
	return nil
}

func (b *businessAPIImpl) RestoreTask(ctx context.Context, id string) error {
	if !b.store.RestoreTask(id) {
		return errors.NewNotFoundError("archived task", id)
	}
	return nil
}

func (b *businessAPIImpl) ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" {
		if err := b.taskValidator.ValidateStatus(filter.Status); err != nil {
			return nil, invalid(err)
		}
	}

	st := b.store.Snapshot()
	source := st.Tasks
	if filter.Archived {
		source = st.ArchivedTasks
	}

	tasks := services.FilterTasks(source, services.TaskCriteria{
		ProjectID: filter.ProjectID,
		Status:    filter.Status,
		Tag:       filter.Tag,
		Text:      filter.Text,
	})
	return services.SortTasks(tasks, st.Sort), nil
}

func (b *businessAPIImpl) SetSort(ctx context.Context, field string, ascending bool) error {
	f := domain.SortField(field)
	switch f {
	case domain.SortByCreated, domain.SortByDueDate, domain.SortByPriority, domain.SortByTitle:
	default:
		return errors.NewInvalidInputError("sort", field, "expected createdAt, dueDate, priority or title")
	}
	b.store.SetSortPreference(domain.SortPreference{Field: f, Ascending: ascending})
	return nil
}

func (b *businessAPIImpl) AddSubtask(ctx context.Context, taskID, title string) (*domain.Subtask, error) {
	if err := b.taskValidator.ValidateTitle("subtask", title); err != nil {
		return nil, invalid(err)
	}
	sub, ok := b.store.AddSubtask(taskID, strings.TrimSpace(title))
	if !ok {
		return nil, errors.NewNotFoundError("task", taskID)
	}
	return &sub, nil
}

func (b *businessAPIImpl) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	if !b.store.ToggleSubtask(taskID, subtaskID) {
		return errors.NewNotFoundError("subtask", subtaskID)
	}
	return nil
}

func (b *businessAPIImpl) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	if !b.store.DeleteSubtask(taskID, subtaskID) {
		return errors.NewNotFoundError("subtask", subtaskID)
	}
	return nil
}

// ========== Time tracking ==========

func (b *businessAPIImpl) AddTime(ctx context.Context, taskID string, hours, minutes, seconds int64) (*domain.Task, error) {
	if err := b.taskValidator.ValidateTimeAmount(hours, minutes, seconds); err != nil {
		return nil, invalid(err)
	}
	ms := timeutil.NormalizeTime(hours, minutes, seconds)
	if ms == 0 {
		return nil, errors.NewInvalidInputError("time", ms, "must be greater than zero")
	}
	if !b.store.UpdateTaskTime(taskID, ms) {
		return nil, errors.NewNotFoundError("task", taskID)
	}
	t, _ := b.store.Snapshot().FindTask(taskID)
	return &t, nil
}

func (b *businessAPIImpl) StartFocus(ctx context.Context, taskID string) (*FocusStatus, error) {
	if current, _ := b.CurrentFocus(ctx); current != nil {
		b.store.EndFocusSession()
	}
	if !b.store.StartFocusSession(taskID) {
		return nil, errors.NewNotFoundError("task", taskID)
	}
	return b.CurrentFocus(ctx)
}

func (b *businessAPIImpl) StopFocus(ctx context.Context) (int64, error) {
	if current, _ := b.CurrentFocus(ctx); current == nil {
		return 0, errors.NewNotFoundError("focus session", "")
	}
	return b.store.EndFocusSession(), nil
}

func (b *businessAPIImpl) CurrentFocus(ctx context.Context) (*FocusStatus, error) {
	st := b.store.Snapshot()
	return focusStatus(st, b.now()), nil
}

func focusStatus(st domain.State, now time.Time) *FocusStatus {
	if !st.IsFocusModeActive || st.ActiveFocusTaskID == nil || st.FocusStartedAt == nil {
		return nil
	}
	t, ok := st.FindTask(*st.ActiveFocusTaskID)
	if !ok {
		return nil
	}
	return &FocusStatus{
		Task:      t,
		StartedAt: *st.FocusStartedAt,
		ElapsedMs: now.Sub(*st.FocusStartedAt).Milliseconds(),
	}
}

// ========== Derived data ==========

func (b *businessAPIImpl) ProjectStats(ctx context.Context, projectID string) (services.ProjectStats, error) {
	st := b.store.Snapshot()
	if _, ok := st.FindProject(projectID); !ok {
		return services.ProjectStats{}, errors.NewNotFoundError("project", projectID)
	}
	return services.ProjectStatistics(st, &projectID), nil
}

func (b *businessAPIImpl) Chart(ctx context.Context, projectID, mode string, weekOffset int) ([]services.DayPoint, error) {
	m, err := services.ParseChartMode(mode)
	if err != nil {
		return nil, errors.NewInvalidInputError("mode", mode, err.Error())
	}
	if weekOffset < 0 {
		return nil, errors.NewInvalidInputError("weekOffset", weekOffset, "must not be negative")
	}

	st := b.store.Snapshot()
	q := services.ChartQuery{Mode: m, WeekOffset: weekOffset}
	if projectID == "" {
		return services.DailyTotals(st, q, b.now()), nil
	}
	if _, ok := st.FindProject(projectID); !ok {
		return nil, errors.NewNotFoundError("project", projectID)
	}
	return services.ChartData(st, projectID, q, b.now()), nil
}

// ========== Account and sync ==========

func (b *businessAPIImpl) Login(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	session, err := b.decoder.Session(strings.TrimSpace(accessToken), refreshToken)
	if err != nil {
		return nil, err
	}
	b.store.SetSession(session)
	return session, nil
}

func (b *businessAPIImpl) Logout(ctx context.Context) error {
	b.store.SignOut(ctx)
	return nil
}

func (b *businessAPIImpl) Status(ctx context.Context) (*Status, error) {
	st := b.store.Snapshot()
	status := &Status{
		User:           st.User,
		Pro:            st.Profile != nil && st.Profile.IsPro,
		RemoteEnabled:  b.engine != nil,
		PendingDeletes: st.PendingDeletes,
		LastPushedAt:   st.LastPushedAt,
		Focus:          focusStatus(st, b.now()),
		Sort:           st.Sort,
	}
	if st.Session != nil && !st.Session.ExpiresAt.IsZero() {
		expires := st.Session.ExpiresAt
		status.SessionExpires = &expires
	}
	return status, nil
}

func (b *businessAPIImpl) Sync(ctx context.Context) (*syncengine.Report, error) {
	if b.engine == nil {
		return nil, errors.NewInvalidInputError("remote.dsn", "", "no remote store configured")
	}
	report := b.engine.SyncAll(ctx)
	return &report, nil
}
