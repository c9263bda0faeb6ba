// Package web provides the credenza HTTP server: routing, sessions and
// the API controllers.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/eventops/credenza/config"
	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/util/random"
	"github.com/eventops/credenza/web/controller"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server is the credenza web server: one gin engine over the service
// layer, with the authorization gate in front of every scoped route.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	db       *gorm.DB
	notifier service.Notifier

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server over an opened database handle. notifier may
// be nil; enrollment transitions are then only logged.
func NewServer(db *gorm.DB, notifier service.Notifier) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel, db: db, notifier: notifier}
}

// initRouter builds the engine, wires services into controllers and
// registers all routes.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	secret := config.GetSessionSecret()
	if secret == "" {
		secret = random.Seq(32)
	}
	store := cookie.NewStore([]byte(secret))
	basePath := config.GetBasePath()

	engine.Use(sessions.Sessions("credenza", store))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	// services share the one injected handle
	permissionService := service.NewPermissionService(s.db, config.GetRootIdentityId(), nil)
	authService := service.NewAuthService(s.db)
	eventService := service.NewEventService(s.db)
	campaignService := service.NewCampaignService(s.db)
	contactService := service.NewContactService(s.db)
	enrollmentService := service.NewEnrollmentService(s.db)
	grantService := service.NewGrantService(s.db)
	doorService := service.NewDoorService(s.db, campaignService, contactService, enrollmentService, s.notifier)
	importService := service.NewBulkImportService(s.db, campaignService, contactService, enrollmentService, config.GetMaxImportRows())

	gate := middleware.NewGate(permissionService, config.GetTokenSecret())

	root := engine.Group(basePath)
	controller.NewAuthController(root, authService)

	api := root.Group("panel/api")
	controller.NewEventController(api, eventService, gate)
	controller.NewCampaignController(api, campaignService, gate)
	controller.NewContactController(api, contactService, gate)
	controller.NewGrantController(api, grantService, gate)
	controller.NewIdentityController(api, authService, gate)
	controller.NewRegistrationController(api, doorService, importService, enrollmentService, gate)
	controller.NewServerController(api, gate)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Start begins listening according to the configured address and port.
func (s *Server) Start() error {
	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{Handler: engine}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server error:", err)
		}
	}()

	logger.Infof("web server running on %s", addr)
	return nil
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop() error {
	s.cancel()
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		if closeErr := s.listener.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
