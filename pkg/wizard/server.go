// Package wizard serves a browser form that builds venues.toml from a
// home base, act profiles and a list of cities.
package wizard

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
)

// DefaultAddr is where the wizard listens unless told otherwise.
const DefaultAddr = "localhost:5000"

//go:embed index.html
var indexHTML string

// InitFunc prepares the database for the configuration written to path.
type InitFunc func(ctx context.Context, path string) error

// Options configures a Server.
type Options struct {
	Addr       string
	ConfigPath string
	InitDB     InitFunc
	Now        func() time.Time
}

// Server is the setup wizard HTTP server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	logger     *logger.Logger
	addr       string
	configPath string
	initDB     InitFunc
	now        func() time.Time
}

type saveResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ConfigPath    string `json:"config_path"`
	BackupPath    string `json:"backup_path,omitempty"`
	DBInitialized bool   `json:"db_initialized"`
	DBError       string `json:"db_error,omitempty"`
}

// NewServer builds the wizard routes.
func NewServer(opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		logger:     log,
		addr:       opts.Addr,
		configPath: config.ResolvePath(opts.ConfigPath),
		initDB:     opts.InitDB,
		now:        opts.Now,
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.now == nil {
		s.now = time.Now
	}

	e := echo.New()
	e.Use(middleware.Recover())

	e.GET("/", s.handleIndex)
	e.GET("/api/counties", s.handleCounties)
	e.POST("/api/preview-config", s.handlePreview)
	e.POST("/api/save-config", s.handleSave)

	s.echo = e
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start listens in the background.
func (s *Server) Start() error {
	s.logger.Info("Setup wizard starting", zap.String("addr", s.addr), zap.String("config", s.configPath))

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.echo,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Setup wizard server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Setup wizard stopping")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(c *echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}

func (s *Server) handleCounties(c *echo.Context) error {
	return c.JSON(http.StatusOK, config.CountyRegions)
}

func (s *Server) handlePreview(c *echo.Context) error {
	var form config.SetupForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid request"})
	}

	data, err := config.GenerateConfig(&form, s.now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "config": string(data)})
}

func (s *Server) handleSave(c *echo.Context) error {
	var form config.SetupForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid request"})
	}

	now := s.now()
	data, err := config.GenerateConfig(&form, now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
	}

	backup, err := config.WriteGenerated(s.configPath, data, now)
	if err != nil {
		s.logger.Error("Failed to save generated config", zap.String("path", s.configPath), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "Error saving configuration: " + err.Error()})
	}
	s.logger.Info("Saved generated config", zap.String("path", s.configPath), zap.String("backup", backup))

	resp := saveResponse{
		Success:    true,
		Message:    "Configuration saved successfully!",
		ConfigPath: s.configPath,
		BackupPath: backup,
	}
	if form.InitDB && s.initDB != nil {
		if err := s.initDB(c.Request().Context(), s.configPath); err != nil {
			s.logger.Warn("Database initialization failed", zap.Error(err))
			resp.DBError = err.Error()
		} else {
			resp.DBInitialized = true
		}
	}
	return c.JSON(http.StatusOK, resp)
}
