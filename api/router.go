// Package api contains all endpoints available
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/course-api/cache"
	"bitwise74/course-api/db"
	"bitwise74/course-api/middleware"
	"bitwise74/course-api/security"
	"bitwise74/course-api/service"
	"bitwise74/course-api/store"

	ginCache "github.com/chenyahui/gin-cache"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Auth     *service.Auth
	Users    *store.Users
	Codes    *store.CodeLedger
	Sessions *store.SessionLedger
	Courses  *store.Courses
	Hasher   service.Hasher
	Cache    cache.Store

	cacheTTL time.Duration
}

// Deps holds everything the router needs that talks to the outside world
type Deps struct {
	DB     *gorm.DB
	Signer *security.SessionSigner
	Hasher service.Hasher
	Mailer service.Mailer
	Cache  cache.Store

	CodeTTL    time.Duration
	CodeDigits int
	SessionTTL time.Duration
	CacheTTL   time.Duration
	RateLimit  int
	CORS       []string
	Turnstile  middleware.TurnstileConfig
}

// NewRouter builds the API from the loaded viper config and starts the
// expiry sweeper. Background work stops when ctx is cancelled.
func NewRouter(ctx context.Context) (*API, error) {
	makeLogger(viper.GetString("app.log_level"))

	d, err := db.New(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	signer, err := security.NewSessionSigner(viper.GetString("jwt.secret"))
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, viper.GetString("cache.redis_addr"), viper.GetString("cache.redis_password"), viper.GetDuration("cache.ttl"))
	if err != nil {
		return nil, err
	}

	var hasher service.Hasher
	switch viper.GetString("auth.hasher") {
	case "argon2":
		hasher = security.NewArgon()
	case "bcrypt":
		hasher = security.NewBcrypt(viper.GetInt("auth.bcrypt_cost"))
	default:
		return nil, errors.New("invalid password hasher provided")
	}

	a := New(ctx, Deps{
		DB:     d,
		Signer: signer,
		Hasher: hasher,
		Mailer: service.NewSMTPMailer(service.SMTPConfig{
			Host:          viper.GetString("mail.host"),
			Port:          viper.GetInt("mail.port"),
			Username:      viper.GetString("mail.username"),
			Password:      viper.GetString("mail.password"),
			SenderAddress: viper.GetString("mail.sender_address"),
			SenderName:    viper.GetString("mail.sender_name"),
		}),
		Cache:      c,
		CodeTTL:    viper.GetDuration("auth.code_ttl"),
		CodeDigits: viper.GetInt("auth.code_digits"),
		SessionTTL: viper.GetDuration("auth.session_ttl"),
		CacheTTL:   viper.GetDuration("cache.ttl"),
		RateLimit:  viper.GetInt("security.rate_limit"),
		CORS:       viper.GetStringSlice("host.cors"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
			Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
		},
	})

	service.ExpirySweeper(ctx, viper.GetDuration("auth.sweep_interval"), a.Codes, a.Sessions)

	return a, nil
}

// New wires the stores, the auth flow and all routes on top of d
func New(ctx context.Context, d Deps) *API {
	a := &API{
		DB:       d.DB,
		Users:    store.NewUsers(d.DB),
		Codes:    store.NewCodeLedger(d.DB, store.CodeLedgerConfig{TTL: d.CodeTTL, Digits: d.CodeDigits}),
		Sessions: store.NewSessionLedger(d.DB, d.Signer, store.SessionLedgerConfig{TTL: d.SessionTTL}),
		Courses:  store.NewCourses(d.DB),
		Hasher:   d.Hasher,
		Cache:    d.Cache,
		cacheTTL: d.CacheTTL,
	}

	if a.Cache == nil {
		a.Cache = cache.NewMemoryStore(time.Minute)
	}
	if a.cacheTTL <= 0 {
		a.cacheTTL = 30 * time.Second
	}
	if len(d.CORS) == 0 {
		d.CORS = []string{"http://localhost:5173"}
	}

	a.Auth = service.NewAuth(a.Users, a.Codes, a.Sessions, d.Hasher, d.Mailer)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.CORS,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimit := d.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}

	auth := middleware.NewAuthMiddleware(a.Sessions)
	turnstile := middleware.NewTurnstileMiddleware(d.Turnstile)
	limiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{RequestsPerSecond: rateLimit})

	main := router.Group("/api", middleware.BodySizeLimiter(1<<20))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// GET /api/validate		-> Validates a session token
		main.GET("/validate", auth, a.Validate)
		main.HEAD("/validate", auth, a.Validate)
	}

	authGroup := main.Group("/auth", limiter)
	{
		// POST /api/auth/register	-> Creates an account and mails a verification code
		authGroup.POST("/register", turnstile, a.AuthRegister)

		// POST /api/auth/verify-email	-> Verifies an account with the mailed code
		authGroup.POST("/verify-email", a.AuthVerifyEmail)

		// POST /api/auth/login		-> Checks credentials and mails a login code
		authGroup.POST("/login", turnstile, a.AuthLogin)

		// POST /api/auth/verify-login	-> Trades a login code for a session token
		authGroup.POST("/verify-login", a.AuthVerifyLogin)

		// POST /api/auth/logout	-> Revokes the current session token
		authGroup.POST("/logout", auth, a.AuthLogout)
	}

	users := main.Group("/users", auth)
	{
		// GET /api/users/me		-> Returns the logged in user
		users.GET("/me", a.UserFetch)

		// PATCH /api/users/me		-> Changes the name and/or password
		users.PATCH("/me", a.UserUpdate)

		// DELETE /api/users/me		-> Deletes the account and all its progress
		users.DELETE("/me", a.UserDelete)
	}

	courses := main.Group("/courses")
	{
		// GET /api/courses		-> Lists all courses, without answers
		courses.GET("", a.cacheFor(a.cacheTTL), a.CourseList)

		// GET /api/courses/mine	-> Lists the courses the user is enrolled in
		courses.GET("/mine", auth, a.CourseMine)

		// GET /api/courses/:id		-> Returns one course with its lessons
		courses.GET("/:id", a.cacheFor(a.cacheTTL), a.CourseFetch)

		// POST /api/courses		-> Creates a course
		courses.POST("", auth, a.CourseCreate)

		// PUT /api/courses/:id		-> Replaces a course
		courses.PUT("/:id", auth, a.CourseReplace)

		// DELETE /api/courses/:id	-> Deletes a course and all progress on it
		courses.DELETE("/:id", auth, a.CourseDelete)

		// POST /api/courses/:id/enroll	-> Enrolls the user
		courses.POST("/:id/enroll", auth, a.CourseEnroll)

		// POST /api/courses/:id/unenroll	-> Unenrolls the user
		courses.POST("/:id/unenroll", auth, a.CourseUnenroll)

		// GET /api/courses/:id/progress	-> Completed lessons and quiz results
		courses.GET("/:id/progress", auth, a.CourseProgress)

		// POST /api/courses/:id/lessons/:lessonId/complete	-> Marks a lesson video as watched
		courses.POST("/:id/lessons/:lessonId/complete", auth, a.LessonComplete)
	}

	lessons := main.Group("/lessons/:lessonId", auth)
	{
		// GET|POST /api/lessons/:lessonId/video-progress	-> Video watch progress
		lessons.GET("/video-progress", a.VideoProgressFetch)
		lessons.POST("/video-progress", a.VideoProgressSave)

		// GET|POST /api/lessons/:lessonId/quiz-progress	-> Quiz attempts and drafts
		lessons.GET("/quiz-progress", a.QuizProgressFetch)
		lessons.POST("/quiz-progress", a.QuizProgressSave)

		// POST /api/lessons/:lessonId/submit-quiz		-> Grades and stores an attempt
		lessons.POST("/submit-quiz", a.QuizSubmit)
	}

	return a
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if l, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(l)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func (a *API) cacheFor(ttl time.Duration) gin.HandlerFunc {
	return ginCache.CacheByRequestURI(a.Cache, ttl)
}

// invalidateCache is called after course writes. A failure only means
// stale reads until the entries expire.
func (a *API) invalidateCache(c *gin.Context) {
	if err := a.Cache.Invalidate(c.Request.Context()); err != nil {
		zap.L().Warn("Failed to invalidate response cache", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
	}
}
