package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adm-api/internal/migrations"
	"github.com/noah-isme/uni-adm-api/internal/repository"
	"github.com/noah-isme/uni-adm-api/internal/service"
	"github.com/noah-isme/uni-adm-api/pkg/cache"
	"github.com/noah-isme/uni-adm-api/pkg/config"
	"github.com/noah-isme/uni-adm-api/pkg/database"
	"github.com/noah-isme/uni-adm-api/pkg/logger"
	"github.com/noah-isme/uni-adm-api/pkg/password"
)

// core is the wired service graph. The web layer lives in a separate
// deployment and mounts its routes on top of these services; this
// process owns the datastore and exposes only operational endpoints.
type core struct {
	Identity    *service.IdentityService
	Bootstrap   *service.BootstrapService
	Catalog     *service.CatalogService
	Sections    *service.SectionService
	Enrollments *service.EnrollmentService
	Attendance  *service.AttendanceService
	Assessment  *service.AssessmentService
	Transcripts *service.TranscriptService
}

func buildCore(db *sqlx.DB, gradeCache *service.RedisGradeCache, cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService) *core {
	users := repository.NewUserRepository(db)
	departments := repository.NewDepartmentRepository(db)
	courses := repository.NewCourseRepository(db)
	rooms := repository.NewRoomRepository(db)
	terms := repository.NewTermRepository(db)
	sections := repository.NewSectionRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	exams := repository.NewExamRepository(db)
	grades := repository.NewGradeRepository(db)
	attendance := repository.NewAttendanceRepository(db)

	hasher := password.NewBcryptHasher(0)

	// A typed nil pointer must not reach the cache seam, so the
	// disabled case passes an untyped nil.
	var assessment *service.AssessmentService
	if gradeCache != nil {
		assessment = service.NewAssessmentService(exams, grades, sections, enrollments, gradeCache, cfg.Grades.CacheTTL, nil, logr, metrics)
	} else {
		assessment = service.NewAssessmentService(exams, grades, sections, enrollments, nil, 0, nil, logr, metrics)
	}

	return &core{
		Identity:    service.NewIdentityService(users, departments, hasher, nil, logr, metrics),
		Bootstrap:   service.NewBootstrapService(users, hasher, cfg.Bootstrap, logr, metrics),
		Catalog:     service.NewCatalogService(departments, courses, rooms, terms, nil, logr),
		Sections:    service.NewSectionService(sections, courses, users, terms, rooms, nil, logr, metrics),
		Enrollments: service.NewEnrollmentService(enrollments, users, nil, logr, metrics),
		Attendance:  service.NewAttendanceService(attendance, enrollments, nil, logr, metrics),
		Assessment:  assessment,
		Transcripts: service.NewTranscriptService(enrollments, assessment, logr),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	metrics := service.NewMetricsService()

	var gradeCache *service.RedisGradeCache
	if cfg.Grades.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, final-grade cache disabled", "error", err)
		} else {
			defer client.Close()
			gradeCache = service.NewRedisGradeCache(client, logr, metrics)
		}
	}

	app := buildCore(db, gradeCache, cfg, logr, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, err := app.Bootstrap.EnsureAdminExists(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to seed admin account", "error", err)
	}
	if created {
		// Only the account we just created is guaranteed to carry the
		// configured id; a pre-existing admin may use any id.
		if _, err := app.Identity.ResolveIdentity(ctx, cfg.Bootstrap.AdminID); err != nil {
			logr.Sugar().Fatalw("seeded admin account not resolvable", "error", err)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logr))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
