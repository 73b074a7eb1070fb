// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"math"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (user.RoleCounts, error)
}

type CourseCounter interface {
	CountByStatus(ctx context.Context) (course.StatusCounts, error)
}

type EnrollmentCounter interface {
	Stats(ctx context.Context) (enrollment.Stats, error)
}

type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

type Handler struct {
	users       UserCounter
	courses     CourseCounter
	enrollments EnrollmentCounter
	snapshots   Snapshotter
	driver      string
	dbStats     func() sql.DBStats
	dbPing      func(ctx context.Context) error
	redisStats  func() *redis.PoolStats
	redisPing   func(ctx context.Context) error
}

// HandlerConfig wires the admin endpoints. DBStats and the Redis hooks
// are optional; they are nil for the JSON driver and without Redis.
type HandlerConfig struct {
	Users       UserCounter
	Courses     CourseCounter
	Enrollments EnrollmentCounter
	Snapshots   Snapshotter
	Driver      string
	DBStats     func() sql.DBStats
	DBPing      func(ctx context.Context) error
	RedisStats  func() *redis.PoolStats
	RedisPing   func(ctx context.Context) error
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		users:       cfg.Users,
		courses:     cfg.Courses,
		enrollments: cfg.Enrollments,
		snapshots:   cfg.Snapshots,
		driver:      cfg.Driver,
		dbStats:     cfg.DBStats,
		dbPing:      cfg.DBPing,
		redisStats:  cfg.RedisStats,
		redisPing:   cfg.RedisPing,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/platform", h.GetPlatformStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Post("/snapshot", h.CreateSnapshot)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	platform, err := h.platformStats(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	dbHealthy := true
	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			dbHealthy = false
		}
	}

	response := SystemStatsResponse{
		Platform: platform,
		Database: DatabaseStatus{
			Driver:  h.driver,
			Healthy: dbHealthy,
			Stats:   h.getDBStats(),
		},
		Runtime: readRuntimeStats(),
	}

	if h.redisPing != nil {
		redisHealthy := true
		if err := h.redisPing(ctx); err != nil {
			redisHealthy = false
		}
		response.Redis = &RedisStatus{
			Healthy: redisHealthy,
			Stats:   h.getRedisStats(),
		}
	}

	core.OK(w, response)
}

func (h *Handler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	platform, err := h.platformStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, platform)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		core.JSONError(w, core.NewAppError(
			core.ErrInvalidInput,
			"snapshots are not configured",
			http.StatusNotImplemented,
			"NOT_IMPLEMENTED",
		))
		return
	}

	path, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, SnapshotResponse{Path: path})
}

func (h *Handler) platformStats(ctx context.Context) (PlatformStats, error) {
	roles, err := h.users.CountByRole(ctx)
	if err != nil {
		return PlatformStats{}, err
	}

	statuses, err := h.courses.CountByStatus(ctx)
	if err != nil {
		return PlatformStats{}, err
	}

	enrollments, err := h.enrollments.Stats(ctx)
	if err != nil {
		return PlatformStats{}, err
	}

	return PlatformStats{
		Users:                 roles.Total,
		Admins:                roles.Admins,
		Students:              roles.Users,
		Courses:               statuses.Total,
		PublishedCourses:      statuses.Published,
		DraftCourses:          statuses.Draft,
		Enrollments:           enrollments.Total,
		CompletedEnrollments:  enrollments.Completed,
		AverageProgress:       round1(enrollments.AverageProgress),
		CompletionRatePercent: round1(enrollments.CompletionRate()),
	}, nil
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	stats := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	stats := h.redisStats()
	return &RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
		StaleConns: stats.StaleConns,
	}
}

func readRuntimeStats() RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
