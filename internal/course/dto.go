// AngelaMos | 2026
// dto.go

package course

import (
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type CreateCourseRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Instructor  string   `json:"instructor"  validate:"required,max=100"`
	Duration    string   `json:"duration"    validate:"required,max=50"`
	Level       string   `json:"level"       validate:"required,oneof=Beginner Intermediate Advanced"`
	Status      string   `json:"status"      validate:"omitempty,oneof=Published Draft"`
	Tags        []string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
	Thumbnail   string   `json:"thumbnail"   validate:"max=2048"`
	Students    *int     `json:"students"    validate:"omitempty,gte=0"`
}

// UpdateCourseRequest merges into the stored course; nil fields are kept.
type UpdateCourseRequest struct {
	Title       *string   `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Instructor  *string   `json:"instructor,omitempty"  validate:"omitempty,min=1,max=100"`
	Duration    *string   `json:"duration,omitempty"    validate:"omitempty,min=1,max=50"`
	Level       *string   `json:"level,omitempty"       validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Status      *string   `json:"status,omitempty"      validate:"omitempty,oneof=Published Draft"`
	Tags        *[]string `json:"tags,omitempty"        validate:"omitempty,max=20,dive,max=50"`
	Thumbnail   *string   `json:"thumbnail,omitempty"   validate:"omitempty,max=2048"`
	Students    *int      `json:"students,omitempty"    validate:"omitempty,gte=0"`
}

type ListCoursesParams struct {
	core.ListParams
	Level  string
	Status string
	Tag    string
}

var SortableFields = []string{"title", "createdAt", "updatedAt", "students"}
