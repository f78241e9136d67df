package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taskdeck/internal/api"
	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/domain"
	apperrors "taskdeck/internal/errors"
	"taskdeck/internal/logging"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/remotetest"
	"taskdeck/internal/store"
	"taskdeck/internal/syncengine"
)

// ServerTestSuite drives the router over a store-backed BusinessAPI.
type ServerTestSuite struct {
	suite.Suite
	store  *store.Store
	fake   *remotetest.Fake
	router http.Handler
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	prev := logging.SetOutput(io.Discard)
	s.T().Cleanup(func() { logging.SetOutput(prev) })

	s.fake = remotetest.NewFake()
	s.store = store.New(store.WithRemote(s.fake))
	s.store.SetSession(nil)
	engine := syncengine.New(s.store, s.fake)

	cfg := config.NewConfig()
	cfg.Server.Mode = "test"
	b := api.NewBusinessAPI(s.store, engine, auth.NewDecoder(""), cfg)
	s.router = New(b, cfg.Server).Handler()
}

func (s *ServerTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *ServerTestSuite) createProject(name string) domain.Project {
	w := s.do(http.MethodPost, "/api/projects", map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var p domain.Project
	s.decode(w, &p)
	return p
}

func (s *ServerTestSuite) createTask(projectID, title string) domain.Task {
	w := s.do(http.MethodPost, "/api/tasks", map[string]string{"projectId": projectID, "title": title})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var t domain.Task
	s.decode(w, &t)
	return t
}

func (s *ServerTestSuite) TestProjects_CRUD() {
	p := s.createProject("Work")
	s.Equal(domain.DefaultProjectColor, p.Color)

	w := s.do(http.MethodPatch, "/api/projects/"+p.ID, map[string]string{"name": "Office"})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/projects", nil)
	var list struct {
		Projects []domain.Project `json:"projects"`
	}
	s.decode(w, &list)
	s.Require().Len(list.Projects, 1)
	s.Equal("Office", list.Projects[0].Name)

	w = s.do(http.MethodDelete, "/api/projects/"+p.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal([]string{p.ID}, s.store.Snapshot().PendingDeletes.Projects)
}

func (s *ServerTestSuite) TestCreateProject_ValidationError() {
	w := s.do(http.MethodPost, "/api/projects", map[string]string{"name": ""})

	s.Equal(http.StatusBadRequest, w.Code)
	var body APIError
	s.decode(w, &body)
	s.Equal("VALIDATION_FAILED", body.Code)
}

func (s *ServerTestSuite) TestTasks_Lifecycle() {
	p := s.createProject("Work")
	t := s.createTask(p.ID, "Write report")
	s.Equal(domain.PriorityMedium, t.Priority)

	w := s.do(http.MethodPatch, "/api/tasks/"+t.ID, map[string]string{"status": "done", "dueDate": "2026-03-01"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated domain.Task
	s.decode(w, &updated)
	s.Equal(domain.StatusDone, updated.Status)
	s.NotNil(updated.CompletedAt)

	w = s.do(http.MethodPost, "/api/tasks/"+t.ID+"/time", map[string]int64{"minutes": 30})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &updated)
	s.Equal(int64(1_800_000), updated.TotalTimeSpent)

	w = s.do(http.MethodPost, "/api/tasks/"+t.ID+"/archive", nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/tasks?archived=true", nil)
	var list struct {
		Tasks []domain.Task `json:"tasks"`
	}
	s.decode(w, &list)
	s.Len(list.Tasks, 1)

	w = s.do(http.MethodPost, "/api/tasks/"+t.ID+"/restore", nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/tasks/"+t.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/api/tasks/"+t.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerTestSuite) TestTasks_Search() {
	p := s.createProject("Work")
	report := s.createTask(p.ID, "Write report")
	s.createTask(p.ID, "Call plumber")

	tag := "writing"
	w := s.do(http.MethodPatch, "/api/tasks/"+report.ID, map[string]string{"tag": tag})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var list struct {
		Tasks []domain.Task `json:"tasks"`
	}
	for _, path := range []string{"/api/tasks?q=REPORT", "/api/tasks?tag=Writing"} {
		w = s.do(http.MethodGet, path, nil)
		s.Require().Equal(http.StatusOK, w.Code)
		s.decode(w, &list)
		s.Require().Len(list.Tasks, 1, path)
		s.Equal(report.ID, list.Tasks[0].ID)
	}
}

func (s *ServerTestSuite) TestTasks_BadRequests() {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"missing project id", http.MethodPost, "/api/tasks", map[string]string{"title": "x"}, http.StatusBadRequest},
		{"unknown project", http.MethodPost, "/api/tasks", map[string]string{"projectId": "nope", "title": "x"}, http.StatusNotFound},
		{"bad archived flag", http.MethodGet, "/api/tasks?archived=maybe", nil, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/api/tasks?status=waiting", nil, http.StatusBadRequest},
		{"unknown task", http.MethodPatch, "/api/tasks/nope", map[string]string{"title": "x"}, http.StatusNotFound},
		{"bad sort field", http.MethodPut, "/api/sort", map[string]interface{}{"field": "color"}, http.StatusBadRequest},
		{"bad chart mode", http.MethodGet, "/api/chart?mode=month", nil, http.StatusBadRequest},
		{"bad week offset", http.MethodGet, "/api/chart?week=abc", nil, http.StatusBadRequest},
		{"stop without focus", http.MethodDelete, "/api/focus", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(tt.method, tt.path, tt.body)
			s.Equal(tt.status, w.Code, w.Body.String())
		})
	}
}

func (s *ServerTestSuite) TestSubtasks() {
	p := s.createProject("Work")
	t := s.createTask(p.ID, "Parent")

	w := s.do(http.MethodPost, "/api/tasks/"+t.ID+"/subtasks", map[string]string{"title": "Child"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var sub domain.Subtask
	s.decode(w, &sub)

	w = s.do(http.MethodPost, "/api/tasks/"+t.ID+"/subtasks/"+sub.ID+"/toggle", nil)
	s.Equal(http.StatusNoContent, w.Code)
	got, _ := s.store.Snapshot().FindTask(t.ID)
	s.True(got.Subtasks[0].Completed)

	w = s.do(http.MethodDelete, "/api/tasks/"+t.ID+"/subtasks/"+sub.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *ServerTestSuite) TestFocusAndStats() {
	p := s.createProject("Work")
	t := s.createTask(p.ID, "Deep work")

	w := s.do(http.MethodPost, "/api/focus", map[string]string{"taskId": t.ID})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/focus", nil)
	var current struct {
		Focus *api.FocusStatus `json:"focus"`
	}
	s.decode(w, &current)
	s.Require().NotNil(current.Focus)
	s.Equal(t.ID, current.Focus.Task.ID)

	w = s.do(http.MethodDelete, "/api/focus", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/projects/"+p.ID+"/stats", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats map[string]int
	s.decode(w, &stats)
	s.Equal(1, stats["total"])
	s.Equal(1, stats["inProgress"])

	w = s.do(http.MethodGet, "/api/chart?mode=last_7_days&project="+p.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var chart struct {
		Days []json.RawMessage `json:"days"`
	}
	s.decode(w, &chart)
	s.Len(chart.Days, 7)
}

func (s *ServerTestSuite) TestLoginStatusSync() {
	s.fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": true})
	s.fake.Put(remote.TableProjects, remote.Row{
		"id": "p9", "name": "Remote", "color": "#123456", "owner": "u1",
		"updated_at": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	w := s.do(http.MethodPost, "/api/login", map[string]string{"accessToken": "not-a-jwt"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/login", map[string]string{"accessToken": unsignedToken(s.T(), "u1")})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.store.Wait()

	w = s.do(http.MethodGet, "/api/status", nil)
	var status api.Status
	s.decode(w, &status)
	s.True(status.Pro)
	s.True(status.RemoteEnabled)

	w = s.do(http.MethodPost, "/api/sync", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var report syncResponse
	s.decode(w, &report)
	s.Zero(report.Failed)
	s.NotEmpty(report.Results)
	_, ok := s.store.Snapshot().FindProject("p9")
	s.True(ok)

	w = s.do(http.MethodPost, "/api/logout", nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Nil(s.store.Snapshot().Session)
}

func unsignedToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}).SignedString([]byte("ignored"))
	require.NoError(t, err)
	return token
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		errorType apperrors.ErrorType
		want      int
	}{
		{apperrors.ErrorTypeValidation, http.StatusBadRequest},
		{apperrors.ErrorTypeInvalidInput, http.StatusBadRequest},
		{apperrors.ErrorTypeNotFound, http.StatusNotFound},
		{apperrors.ErrorTypeTimeout, http.StatusGatewayTimeout},
		{apperrors.ErrorTypeRemote, http.StatusBadGateway},
		{apperrors.ErrorTypeDatabase, http.StatusInternalServerError},
		{apperrors.ErrorTypeMigration, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.errorType.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.errorType))
		})
	}
}

func TestRespondError_PlainError(t *testing.T) {
	prev := logging.SetOutput(io.Discard)
	defer logging.SetOutput(prev)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/status", nil)

	respondError(c, stderrors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeInternalError, body.Code)
}
