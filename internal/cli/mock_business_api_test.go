package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/domain"
	"taskdeck/internal/services"
	"taskdeck/internal/syncengine"
)

// mockBusinessAPI implements api.BusinessAPI with testify expectations
type mockBusinessAPI struct {
	mock.Mock
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func (m *mockBusinessAPI) CreateProject(ctx context.Context, name, color string) (*domain.Project, error) {
	args := m.Called(ctx, name, color)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (m *mockBusinessAPI) UpdateProject(ctx context.Context, id string, name, color *string) (*domain.Project, error) {
	args := m.Called(ctx, id, name, color)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func (m *mockBusinessAPI) DeleteProject(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBusinessAPI) ListProjects(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]domain.Project)
	return projects, args.Error(1)
}

func (m *mockBusinessAPI) CreateTask(ctx context.Context, projectID, title, priority string) (*domain.Task, error) {
	args := m.Called(ctx, projectID, title, priority)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockBusinessAPI) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockBusinessAPI) UpdateTask(ctx context.Context, id string, update api.TaskUpdate) (*domain.Task, error) {
	args := m.Called(ctx, id, update)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockBusinessAPI) DeleteTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBusinessAPI) ArchiveTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBusinessAPI) RestoreTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBusinessAPI) ListTasks(ctx context.Context, filter api.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, filter)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *mockBusinessAPI) SetSort(ctx context.Context, field string, ascending bool) error {
	return m.Called(ctx, field, ascending).Error(0)
}

func (m *mockBusinessAPI) AddSubtask(ctx context.Context, taskID, title string) (*domain.Subtask, error) {
	args := m.Called(ctx, taskID, title)
	s, _ := args.Get(0).(*domain.Subtask)
	return s, args.Error(1)
}

func (m *mockBusinessAPI) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	return m.Called(ctx, taskID, subtaskID).Error(0)
}

func (m *mockBusinessAPI) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return m.Called(ctx, taskID, subtaskID).Error(0)
}

func (m *mockBusinessAPI) AddTime(ctx context.Context, taskID string, hours, minutes, seconds int64) (*domain.Task, error) {
	args := m.Called(ctx, taskID, hours, minutes, seconds)
	t, _ := args.Get(0).(*domain.Task)
	return t, args.Error(1)
}

func (m *mockBusinessAPI) StartFocus(ctx context.Context, taskID string) (*api.FocusStatus, error) {
	args := m.Called(ctx, taskID)
	f, _ := args.Get(0).(*api.FocusStatus)
	return f, args.Error(1)
}

func (m *mockBusinessAPI) StopFocus(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBusinessAPI) CurrentFocus(ctx context.Context) (*api.FocusStatus, error) {
	args := m.Called(ctx)
	f, _ := args.Get(0).(*api.FocusStatus)
	return f, args.Error(1)
}

func (m *mockBusinessAPI) ProjectStats(ctx context.Context, projectID string) (services.ProjectStats, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(services.ProjectStats), args.Error(1)
}

func (m *mockBusinessAPI) Chart(ctx context.Context, projectID, mode string, weekOffset int) ([]services.DayPoint, error) {
	args := m.Called(ctx, projectID, mode, weekOffset)
	points, _ := args.Get(0).([]services.DayPoint)
	return points, args.Error(1)
}

func (m *mockBusinessAPI) Login(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockBusinessAPI) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBusinessAPI) Status(ctx context.Context) (*api.Status, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*api.Status)
	return s, args.Error(1)
}

func (m *mockBusinessAPI) Sync(ctx context.Context) (*syncengine.Report, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*syncengine.Report)
	return r, args.Error(1)
}

var testNow = time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)

// setupTestAppWithMockBusinessAPI returns an app that writes to a buffer
func setupTestAppWithMockBusinessAPI(t *testing.T) (*App, *mockBusinessAPI, *bytes.Buffer) {
	t.Helper()
	prevNow := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = prevNow })

	m := &mockBusinessAPI{}
	t.Cleanup(func() { m.AssertExpectations(t) })

	out := &bytes.Buffer{}
	return NewAppWithAPI(m, config.NewConfig(), out), m, out
}

// runCLI executes args through the root command
func runCLI(t *testing.T, app *App, args ...string) error {
	t.Helper()
	return app.Run(context.Background(), args)
}
