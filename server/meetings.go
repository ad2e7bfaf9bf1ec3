package server

import (
	"net/http"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/report"
	"github.com/existflow/ironmeet/internal/stats"
	"github.com/labstack/echo/v4"
)

// handleListMeetings returns every meeting tree with per-meeting progress
func (s *Server) handleListMeetings(c echo.Context) error {
	ms, err := s.scope(c).FetchTree(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}

	views := make([]api.MeetingView, len(ms))
	for i, m := range ms {
		views[i] = api.NewMeetingView(m)
	}
	return c.JSON(http.StatusOK, api.MeetingList{Meetings: views, Overview: stats.Dashboard(ms)})
}

func (s *Server) handleCreateMeeting(c echo.Context) error {
	var in model.MeetingInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request")
	}
	m, err := s.scope(c).CreateMeeting(c.Request().Context(), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, api.NewMeetingView(m))
}

func (s *Server) handleGetMeeting(c echo.Context) error {
	m, err := s.scope(c).GetMeeting(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, api.NewMeetingView(m))
}

func (s *Server) handleUpdateMeeting(c echo.Context) error {
	var p model.MeetingPatch
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid request")
	}
	m, err := s.scope(c).UpdateMeeting(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, api.NewMeetingView(m))
}

func (s *Server) handleDeleteMeeting(c echo.Context) error {
	ctx := c.Request().Context()
	scope := s.scope(c)
	m, err := scope.GetMeeting(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if err := scope.DeleteMeeting(ctx, m.ID); err != nil {
		return s.fail(c, err)
	}
	if err := report.Discard(ctx, m, s.files, userID(c)); err != nil {
		s.log.Warn("Failed to remove report file", logger.F("meeting", m.ID), logger.Err(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSaveNotes(c echo.Context) error {
	var req api.NotesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := s.scope(c).SaveNotes(c.Request().Context(), c.Param("id"), req.Content); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSaveSettings(c echo.Context) error {
	var rs model.ReportSettings
	if err := c.Bind(&rs); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := s.scope(c).SaveReportSettings(c.Request().Context(), c.Param("id"), rs); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var in model.ProjectInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := s.scope(c).CreateProject(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var patch model.ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request")
	}
	p, err := s.scope(c).UpdateProject(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	if err := s.scope(c).DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var in model.TaskInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request")
	}
	t, err := s.scope(c).CreateTask(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var patch model.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid request")
	}
	t, err := s.scope(c).UpdateTask(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// handleSetTaskStatus moves a task to another column
func (s *Server) handleSetTaskStatus(c echo.Context) error {
	var req api.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	t, err := s.scope(c).SetTaskStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	if err := s.scope(c).DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
