package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/AbbyGrylls/impetus9-backend/internal/auth"
	"github.com/AbbyGrylls/impetus9-backend/internal/store"
	"github.com/AbbyGrylls/impetus9-backend/internal/web"
	"github.com/AbbyGrylls/impetus9-backend/internal/ws"
)

const apiBasePath = "/api/v1"

const exportCacheCleanup = time.Minute

type ServerOptions struct {
	DevMode bool
	Port    int
	Store   *store.Store
	Secrets auth.Secrets
	// ExportCacheTTL bounds how long a generated spreadsheet may be reused
	// before registrations are re-read. Zero disables caching.
	ExportCacheTTL time.Duration
}

type Server struct {
	Options    *ServerOptions
	Engine     *gin.Engine
	HttpServer *http.Server
	Store      *store.Store
	Auth       *auth.Authorizer
	Hub        *ws.Hub

	exports *cache.Cache // event name -> generated xlsx bytes
}

func NewServer(options *ServerOptions) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("server options cannot be nil")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("server options Store cannot be nil")
	}
	if options.Secrets == nil {
		return nil, fmt.Errorf("server options Secrets cannot be nil")
	}

	server := &Server{
		Options: options,
		Store:   options.Store,
		Auth:    auth.NewAuthorizer(options.Secrets),
		Hub:     ws.NewHub(),
		exports: cache.New(options.ExportCacheTTL, exportCacheCleanup),
	}

	if !server.Options.DevMode {
		log.Info().Msg("Running Gin in production mode")
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Info().Msg("Running Gin in development mode")
	}

	engine := gin.New()
	server.Engine = engine
	server.Engine.Use(gin.Recovery())
	server.Engine.Use(requestLogger())

	server.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", options.Port),
		Handler: engine,
	}

	return server, nil
}

func (s *Server) RegisterRoutes() error {
	// Public routes — no authentication required
	s.Engine.GET(apiBasePath+"/health", s.getHealthHandler())
	s.Engine.GET(apiBasePath+"/version", s.getVersionHandler())

	// Registration intake is public — participants register themselves
	s.Engine.POST(apiBasePath+"/registrations", s.createRegistrationHandler())

	// Download requests carry the passkey in the body; authorization happens
	// inside the handler before any data access
	s.Engine.POST(apiBasePath+"/downloads", s.downloadHandler())

	// Registration listing for coordinators and admins (passkey header)
	s.Engine.GET(apiBasePath+"/events/:event/registrations", s.listRegistrationsHandler())

	// WebSocket endpoint for first-download claim notifications (auth handled in handler)
	s.Engine.GET(apiBasePath+"/events/:event/ws", s.wsHandler())

	// Static files are public (no middleware)
	web.RegisterStaticFiles(s.Engine)
	return nil
}

func (s *Server) Run() error {
	if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	s.HttpServer.Shutdown(ctx)
}
