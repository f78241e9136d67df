package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/api"
	"taskdeck/internal/domain"
	"taskdeck/internal/syncengine"
)

type projectRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type createTaskRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	ProjectID    *string    `json:"projectId"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	Tag          *string    `json:"tag"`
	ClearTag     bool       `json:"clearTag"`
	DueDate      *string    `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
	CompletedAt  *time.Time `json:"completedAt"`
}

type timeRequest struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type sortRequest struct {
	Field     string `json:"field" binding:"required"`
	Ascending bool   `json:"ascending"`
}

type focusRequest struct {
	TaskID string `json:"taskId" binding:"required"`
}

type loginRequest struct {
	AccessToken  string `json:"accessToken" binding:"required"`
	RefreshToken string `json:"refreshToken"`
}

type syncResult struct {
	Step      syncengine.Step   `json:"step"`
	Kind      domain.EntityKind `json:"kind"`
	Skipped   string            `json:"skipped,omitempty"`
	Applied   int               `json:"applied"`
	Discarded int               `json:"discarded"`
	Unchanged int               `json:"unchanged"`
	Invalid   int               `json:"invalid"`
	Error     string            `json:"error,omitempty"`
}

type syncResponse struct {
	StartedAt  time.Time    `json:"startedAt"`
	DurationMs int64        `json:"durationMs"`
	Failed     int          `json:"failed"`
	Results    []syncResult `json:"results"`
}

// ========== Projects ==========

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.api.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	var name, color string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Color != nil {
		color = *req.Color
	}

	project, err := s.api.CreateProject(c.Request.Context(), name, color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) updateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	project, err := s.api.UpdateProject(c.Request.Context(), c.Param("id"), req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.api.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) projectStats(c *gin.Context) {
	stats, err := s.api.ProjectStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ========== Tasks ==========

func (s *Server) listTasks(c *gin.Context) {
	filter := api.TaskFilter{
		ProjectID: c.Query("project"),
		Status:    domain.TaskStatus(c.Query("status")),
		Tag:       c.Query("tag"),
		Text:      c.Query("q"),
	}
	if archived := c.Query("archived"); archived != "" {
		b, err := strconv.ParseBool(archived)
		if err != nil {
			badRequest(c, "Invalid archived flag")
			return
		}
		filter.Archived = b
	}

	tasks, err := s.api.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "projectId is required")
		return
	}
	task, err := s.api.CreateTask(c.Request.Context(), req.ProjectID, req.Title, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.api.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	task, err := s.api.UpdateTask(c.Request.Context(), c.Param("id"), api.TaskUpdate{
		Title:        req.Title,
		ProjectID:    req.ProjectID,
		Status:       req.Status,
		Priority:     req.Priority,
		Tag:          req.Tag,
		ClearTag:     req.ClearTag,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		CompletedAt:  req.CompletedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.api.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) archiveTask(c *gin.Context) {
	if err := s.api.ArchiveTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) restoreTask(c *gin.Context) {
	if err := s.api.RestoreTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addTime(c *gin.Context) {
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	task, err := s.api.AddTime(c.Request.Context(), c.Param("id"), req.Hours, req.Minutes, req.Seconds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) addSubtask(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	sub, err := s.api.AddSubtask(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) toggleSubtask(c *gin.Context) {
	if err := s.api.ToggleSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteSubtask(c *gin.Context) {
	if err := s.api.DeleteSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "field is required")
		return
	}
	if err := s.api.SetSort(c.Request.Context(), req.Field, req.Ascending); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ========== Focus ==========

func (s *Server) currentFocus(c *gin.Context) {
	focus, err := s.api.CurrentFocus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"focus": focus})
}

func (s *Server) startFocus(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "taskId is required")
		return
	}
	focus, err := s.api.StartFocus(c.Request.Context(), req.TaskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"focus": focus})
}

func (s *Server) stopFocus(c *gin.Context) {
	credited, err := s.api.StopFocus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"creditedMs": credited})
}

// ========== Derived data ==========

func (s *Server) chart(c *gin.Context) {
	week := 0
	if raw := c.Query("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid week offset")
			return
		}
		week = n
	}

	points, err := s.api.Chart(c.Request.Context(), c.Query("project"), c.Query("mode"), week)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": points})
}

// ========== Account and sync ==========

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "accessToken is required")
		return
	}
	session, err := s.api.Login(c.Request.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": session.User, "expiresAt": session.ExpiresAt})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.api.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) status(c *gin.Context) {
	status, err := s.api.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) sync(c *gin.Context) {
	report, err := s.api.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSyncResponse(report))
}

func newSyncResponse(r *syncengine.Report) syncResponse {
	resp := syncResponse{
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
		Failed:     len(r.Failed()),
		Results:    make([]syncResult, len(r.Results)),
	}
	for i, res := range r.Results {
		resp.Results[i] = syncResult{
			Step:      res.Step,
			Kind:      res.Kind,
			Skipped:   res.Skipped,
			Applied:   res.Applied,
			Discarded: res.Discarded,
			Unchanged: res.Unchanged,
			Invalid:   res.Invalid,
		}
		if res.Err != nil {
			resp.Results[i].Error = res.Err.Error()
		}
	}
	return resp
}
