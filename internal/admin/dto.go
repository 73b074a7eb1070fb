// AngelaMos | 2026
// dto.go

package admin

type SystemStatsResponse struct {
	Platform PlatformStats  `json:"platform"`
	Database DatabaseStatus `json:"database"`
	Redis    *RedisStatus   `json:"redis,omitempty"`
	Runtime  RuntimeStats   `json:"runtime"`
}

// PlatformStats backs both dashboards: counts by role, by course status,
// and enrollment progress.
type PlatformStats struct {
	Users                 int     `json:"users"`
	Admins                int     `json:"admins"`
	Students              int     `json:"students"`
	Courses               int     `json:"courses"`
	PublishedCourses      int     `json:"publishedCourses"`
	DraftCourses          int     `json:"draftCourses"`
	Enrollments           int     `json:"enrollments"`
	CompletedEnrollments  int     `json:"completedEnrollments"`
	AverageProgress       float64 `json:"averageProgress"`
	CompletionRatePercent float64 `json:"completionRate"`
}

type SnapshotResponse struct {
	Path string `json:"path"`
}

type DatabaseStatus struct {
	Driver  string       `json:"driver"`
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
	MaxIdleClosed      int64  `json:"maxIdleClosed"`
	MaxIdleTimeClosed  int64  `json:"maxIdleTimeClosed"`
	MaxLifetimeClosed  int64  `json:"maxLifetimeClosed"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
	StaleConns uint32 `json:"staleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	MemSys       uint64 `json:"memSysBytes"`
	NumGC        uint32 `json:"numGc"`
}
