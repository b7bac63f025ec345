package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"social-blog/internal/config"
	"social-blog/internal/follow"
	"social-blog/internal/handler"
	"social-blog/internal/logger"
	"social-blog/internal/middleware"
	"social-blog/internal/post"
	"social-blog/internal/realtime"
	"social-blog/internal/session"
	"social-blog/internal/user"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	var sessionStore session.Store
	if infra.Redis != nil {
		sessionStore = session.NewRedisStore(infra.Redis.Client)
	} else {
		logger.Warn("no redis configured, using in-memory sessions", nil)
		sessionStore = session.NewMemoryStore()
	}

	pipeline := middleware.NewPipeline(sessionStore)

	userService := user.NewService(infra.DB)
	postService := post.NewService(infra.DB)
	followService := follow.NewService(infra.DB)

	h := handler.NewHandler(
		pipeline,
		userService,
		postService,
		followService,
		cfg.JWTSecret,
	)

	bridge := realtime.NewBridge()

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	router.LoadHTMLGlob("web/templates/*.html")

	// Static assets short-circuit: these routes never touch the session
	// pipeline.
	router.Static("/public", "./web/public")

	// ----------------------------
	// JSON API (token auth, no sessions, no CSRF)
	// ----------------------------

	api := router.Group("/api")
	h.RegisterAPIRoutes(api)

	// ----------------------------
	// Web routes (session pipeline + CSRF)
	// ----------------------------

	// The realtime bridge derives identity from the same session store but
	// must not consume flash state, and the handshake is a GET with no
	// token, so it sits outside the CSRF guard.
	router.GET("/ws", pipeline.AttachReadOnly(), bridge.Handler())

	web := router.Group("/")
	web.Use(pipeline.Attach())

	guarded := web.Group("/")
	guarded.Use(pipeline.VerifyCSRF())
	h.RegisterRoutes(guarded)

	router.NoRoute(pipeline.Attach(), h.NotFound)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if infra.Redis != nil {
			if err := infra.Redis.Close(); err != nil {
				return err
			}
		}
		return infra.DB.Close()
	}, nil
}
