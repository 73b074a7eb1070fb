// AngelaMos | 2026
// entity.go

package enrollment

import (
	"errors"
	"time"

	"github.com/carterperez-dev/templates/lms-backend/internal/course"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

var ErrAlreadyEnrolled = errors.New("already enrolled in this course")

type Enrollment struct {
	ID          string     `db:"id"           json:"id"`
	UserID      string     `db:"user_id"      json:"userId"`
	CourseID    string     `db:"course_id"    json:"courseId"`
	Progress    float64    `db:"progress"     json:"progress"`
	EnrolledAt  time.Time  `db:"enrolled_at"  json:"enrolledAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt"`
}

func (e *Enrollment) IsCompleted() bool {
	return e.CompletedAt != nil
}

// SetProgress clamps p into [0,100]. The first time progress reaches 100
// completedAt is stamped with now; it is never cleared or moved afterwards.
func (e *Enrollment) SetProgress(p float64, now time.Time) {
	e.Progress = ClampProgress(p)
	if e.Progress >= MaxProgress && e.CompletedAt == nil {
		e.CompletedAt = &now
	}
}

func ClampProgress(p float64) float64 {
	return min(max(p, MinProgress), MaxProgress)
}

// UserSummary is the slice of a user that enrollment reads expose.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Detail is an enrollment joined to its course and user. Either side is
// null when the referenced record no longer exists.
type Detail struct {
	Enrollment
	Course *course.Course `json:"course"`
	User   *UserSummary   `json:"user"`
}

type Stats struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	AverageProgress float64 `json:"averageProgress"`
}

// CompletionRate is the completed share of all enrollments as a
// percentage.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
