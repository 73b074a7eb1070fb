// AngelaMos | 2026
// dto.go

package enrollment

import (
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type EnrollRequest struct {
	UserID   string `json:"userId"   validate:"required,max=64"`
	CourseID string `json:"courseId" validate:"required,max=64"`
}

// ProgressRequest also accepts the full enrollment object the original
// web client PUTs back; only progress is read.
type ProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required"`
}

type ListEnrollmentsParams struct {
	core.ListParams
	UserID    string
	CourseID  string
	Completed *bool
}

var SortableFields = []string{"enrolledAt", "progress"}
