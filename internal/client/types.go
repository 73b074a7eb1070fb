// AngelaMos | 2026
// types.go

package client

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Duration    string    `json:"duration"`
	Level       string    `json:"level"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
	Thumbnail   string    `json:"thumbnail"`
	Students    int       `json:"students"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CourseInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Instructor  string   `json:"instructor"`
	Duration    string   `json:"duration"`
	Level       string   `json:"level"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	Thumbnail   string   `json:"thumbnail"`
	Students    int      `json:"students"`
}

// CourseUpdate is a partial update; nil fields are left as stored.
type CourseUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Instructor  *string   `json:"instructor,omitempty"`
	Duration    *string   `json:"duration,omitempty"`
	Level       *string   `json:"level,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
	Students    *int      `json:"students,omitempty"`
}

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Enrollment carries Course and User only on reads; either is nil when
// the referenced record is gone.
type Enrollment struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	CourseID    string       `json:"courseId"`
	Progress    float64      `json:"progress"`
	EnrolledAt  time.Time    `json:"enrolledAt"`
	CompletedAt *time.Time   `json:"completedAt"`
	Course      *Course      `json:"course,omitempty"`
	User        *UserSummary `json:"user,omitempty"`
}

func (e *Enrollment) IsCompleted() bool {
	return e.CompletedAt != nil
}

type PlatformStats struct {
	Users                int     `json:"users"`
	Admins               int     `json:"admins"`
	Students             int     `json:"students"`
	Courses              int     `json:"courses"`
	PublishedCourses     int     `json:"publishedCourses"`
	DraftCourses         int     `json:"draftCourses"`
	Enrollments          int     `json:"enrollments"`
	CompletedEnrollments int     `json:"completedEnrollments"`
	AverageProgress      float64 `json:"averageProgress"`
	CompletionRate       float64 `json:"completionRate"`
}
