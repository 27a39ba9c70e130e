package router

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/plumekit/plume/internal/api/handler"
	"github.com/plumekit/plume/internal/auth"
)

// Options bundles what the engine needs beyond the handlers.
type Options struct {
	Handler       *handler.Handler
	Tokens        *auth.TokenManager
	Log           *zap.Logger
	MediaDir      string
	GinMode       string
	SentryEnabled bool
	Tracing       bool
}

// New assembles the gin engine: middleware stack, then the route table.
// Static segments (/new/, /follow/, /group/, /auth/) take priority over
// the /:username tree, so those names are effectively reserved.
func New(opts Options) *gin.Engine {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLog(opts.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(securityHeaders())
	if opts.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if opts.Tracing {
		r.Use(otelgin.Middleware("plume"))
	}
	r.Use(auth.ResolveViewer(opts.Tokens))

	// 1 write every 2s with a small burst is plenty for a human.
	limiter := newIPRateLimiter(rate.Limit(0.5), 5)
	go limiter.cleanup(10*time.Minute, 30*time.Minute)
	limited := rateLimit(limiter)

	h := opts.Handler
	r.NoRoute(h.NotFoundPage)

	r.GET("/", h.Index)
	r.GET("/about-author/", h.AboutAuthor)
	r.GET("/about-tech/", h.AboutTech)
	r.Static("/media", opts.MediaDir)

	a := r.Group("/auth")
	{
		a.GET("/signup/", h.SignupForm)
		a.POST("/signup/", limited, h.Signup)
		a.GET("/login/", h.LoginForm)
		a.POST("/login/", limited, h.Login)
		a.GET("/logout/", h.Logout)
	}

	r.GET("/group/:slug/", h.GroupFeed)

	r.GET("/new/", auth.RequireViewer(), h.NewPostForm)
	r.POST("/new/", auth.RequireViewer(), limited, h.CreatePost)
	r.GET("/follow/", auth.RequireViewer(), h.FollowFeed)

	r.GET("/:username/", h.Profile)
	r.GET("/:username/follow/", auth.RequireViewer(), h.Follow)
	r.GET("/:username/unfollow/", auth.RequireViewer(), h.Unfollow)
	r.GET("/:username/:post_id/", h.PostView)
	r.GET("/:username/:post_id/edit/", auth.RequireViewer(), h.EditPostForm)
	r.POST("/:username/:post_id/edit/", auth.RequireViewer(), limited, h.UpdatePost)
	r.POST("/:username/:post_id/comment/", auth.RequireViewer(), limited, h.AddComment)

	return r
}

func requestLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
