package server

import (
	"errors"
	"net/http"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/report"
	"github.com/labstack/echo/v4"
)

// handlePreviewReport composes the report without storing it
func (s *Server) handlePreviewReport(c echo.Context) error {
	m, err := s.scope(c).GetMeeting(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	content := report.ComposeMeeting(m)
	return c.JSON(http.StatusOK, api.ReportResponse{
		Content:    content,
		FileName:   report.FileName(m.Title),
		EmailDraft: report.EmailDraft(m, content),
	})
}

// handleGenerateReport composes the report and stores it as the meeting's
// current report
func (s *Server) handleGenerateReport(c echo.Context) error {
	var req api.GenerateReportRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request")
		}
	}

	ctx := c.Request().Context()
	scope := s.scope(c)
	m, err := scope.GetMeeting(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}

	saved, content, err := report.Publish(ctx, m, scope, s.files, userID(c), req.StoreAsFile)
	if err != nil {
		return s.fail(c, err)
	}

	s.log.Info("Report generated",
		logger.F("meeting", m.ID),
		logger.F("style", report.Resolve(m.ReportSettings.Style)),
		logger.F("file", saved.FilePath))

	return c.JSON(http.StatusOK, s.reportResponse(m, saved, content))
}

// handleGetReport returns the stored report with its content resolved
func (s *Server) handleGetReport(c echo.Context) error {
	ctx := c.Request().Context()
	scope := s.scope(c)
	m, err := scope.GetMeeting(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	r, err := scope.GetReport(ctx, m.ID)
	if err != nil {
		return s.fail(c, err)
	}
	content, err := report.Content(ctx, r, s.files)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.reportResponse(m, r, content))
}

func (s *Server) reportResponse(m model.Meeting, r model.GeneratedReport, content string) api.ReportResponse {
	resp := api.ReportResponse{
		Content:    content,
		FileName:   report.FileName(m.Title),
		FilePath:   r.FilePath,
		EmailDraft: report.EmailDraft(m, content),
		CreatedAt:  r.CreatedAt,
	}
	if r.FilePath != "" {
		if u, err := s.files.SignedURL(r.FilePath, s.opts.URLTTL, s.now()); err == nil {
			resp.URL = u
		}
	}
	return resp
}

// handleListFiles lists the user's stored report files with download links
func (s *Server) handleListFiles(c echo.Context) error {
	list, err := report.StoredFiles(c.Request().Context(), s.files, userID(c), s.opts.URLTTL, s.now())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, api.FileList{Files: list})
}

// handleFile serves a stored file to holders of a valid signed URL
func (s *Server) handleFile(c echo.Context) error {
	key := c.Param("*")
	err := s.files.Verify(key, c.QueryParam("expires"), c.QueryParam("sig"), s.now())
	switch {
	case errors.Is(err, files.ErrExpired):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "link expired"})
	case err != nil:
		return c.JSON(http.StatusForbidden, map[string]string{"error": "invalid signature"})
	}

	data, err := s.files.Read(c.Request().Context(), key)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", data)
}
