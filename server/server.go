package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/existflow/ironmeet/internal/billing"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options holds the server collaborators and settings
type Options struct {
	DB            *db.DB
	Files         *files.Local
	Catalog       *billing.Catalog
	SessionTTL    time.Duration
	URLTTL        time.Duration
	WebhookSecret string
	Logger        *logger.Logger
}

// Server is the IronMeet API server
type Server struct {
	db      *db.DB
	files   *files.Local
	catalog *billing.Catalog
	opts    Options
	log     *logger.Logger
	echo    *echo.Echo
	now     func() time.Time
}

// New creates a new server
func New(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if opts.Files == nil {
		return nil, errors.New("server: file storage is required")
	}
	if opts.Catalog == nil {
		c, err := billing.NewCatalog(billing.DefaultPlans)
		if err != nil {
			return nil, err
		}
		opts.Catalog = c
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = time.Hour
	}
	log := opts.Logger
	if log == nil {
		// No outputs: entries are dropped
		var err error
		if log, err = logger.New(logger.Config{Level: logger.ERROR}); err != nil {
			return nil, err
		}
	}

	s := &Server{
		db:      opts.DB,
		files:   opts.Files,
		catalog: opts.Catalog,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)
	e.GET("/files/*", s.handleFile)

	api := e.Group("/api/v1")

	// Public
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/billing/webhook", s.handleBillingWebhook)

	// Protected
	p := api.Group("")
	p.Use(s.authMiddleware)
	p.GET("/me", s.handleMe)
	p.POST("/logout", s.handleLogout)

	p.GET("/meetings", s.handleListMeetings)
	p.POST("/meetings", s.handleCreateMeeting)
	p.GET("/meetings/:id", s.handleGetMeeting)
	p.PATCH("/meetings/:id", s.handleUpdateMeeting)
	p.DELETE("/meetings/:id", s.handleDeleteMeeting)
	p.PUT("/meetings/:id/notes", s.handleSaveNotes)
	p.PUT("/meetings/:id/settings", s.handleSaveSettings)

	p.POST("/meetings/:id/projects", s.handleCreateProject)
	p.PATCH("/projects/:id", s.handleUpdateProject)
	p.DELETE("/projects/:id", s.handleDeleteProject)

	p.POST("/projects/:id/tasks", s.handleCreateTask)
	p.PATCH("/tasks/:id", s.handleUpdateTask)
	p.PUT("/tasks/:id/status", s.handleSetTaskStatus)
	p.DELETE("/tasks/:id", s.handleDeleteTask)

	p.GET("/meetings/:id/report/preview", s.handlePreviewReport)
	p.POST("/meetings/:id/report", s.handleGenerateReport)
	p.GET("/meetings/:id/report", s.handleGetReport)

	p.GET("/files", s.handleListFiles)

	p.GET("/billing", s.handleBilling)

	s.echo = e
}

// requestLogger logs each request with its status and duration
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)

		res := c.Response()
		s.log.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()))

		return err
	}
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	s.log.Info("Server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
