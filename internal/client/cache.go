// AngelaMos | 2026
// cache.go

package client

import (
	"context"
	"slices"
	"sync"
)

// collection is a local copy of one server list with the state of the
// last load.
type collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	err     error
	loading bool
}

func (c *collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Err is the error from the last load or mutation, or nil.
func (c *collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *collection[T]) load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.err = err
	if err == nil {
		c.items = items
	}
	return err
}

func (c *collection[T]) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return err
}

// CourseCache reloads the whole list after every mutation.
type CourseCache struct {
	collection[Course]
	svc    *CourseService
	filter CourseFilter
}

func NewCourseCache(c *Client, filter CourseFilter) *CourseCache {
	return &CourseCache{svc: c.Courses, filter: filter}
}

func (c *CourseCache) Refresh(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context) ([]Course, error) {
		items, _, err := c.svc.List(ctx, c.filter)
		return items, err
	})
}

func (c *CourseCache) Create(ctx context.Context, in CourseInput) (*Course, error) {
	created, err := c.svc.Create(ctx, in)
	if err != nil {
		return nil, c.fail(err)
	}
	return created, c.Refresh(ctx)
}

func (c *CourseCache) Update(ctx context.Context, id string, in CourseUpdate) (*Course, error) {
	updated, err := c.svc.Update(ctx, id, in)
	if err != nil {
		return nil, c.fail(err)
	}
	return updated, c.Refresh(ctx)
}

func (c *CourseCache) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return c.fail(err)
	}
	return c.Refresh(ctx)
}

// UserCache reloads the whole list after every mutation.
type UserCache struct {
	collection[User]
	svc    *UserService
	filter UserFilter
}

func NewUserCache(c *Client, filter UserFilter) *UserCache {
	return &UserCache{svc: c.Users, filter: filter}
}

func (c *UserCache) Refresh(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context) ([]User, error) {
		items, _, err := c.svc.List(ctx, c.filter)
		return items, err
	})
}

func (c *UserCache) Create(ctx context.Context, in UserInput) (*User, error) {
	created, err := c.svc.Create(ctx, in)
	if err != nil {
		return nil, c.fail(err)
	}
	return created, c.Refresh(ctx)
}

func (c *UserCache) Update(ctx context.Context, id string, in UserUpdate) (*User, error) {
	updated, err := c.svc.Update(ctx, id, in)
	if err != nil {
		return nil, c.fail(err)
	}
	return updated, c.Refresh(ctx)
}

func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return c.fail(err)
	}
	return c.Refresh(ctx)
}

// EnrollmentCache holds one user's enrollments, or everyone's when userID
// is empty. Progress updates and unenrolls patch the local list instead
// of reloading it.
type EnrollmentCache struct {
	collection[Enrollment]
	svc    *EnrollmentService
	userID string
}

func NewEnrollmentCache(c *Client, userID string) *EnrollmentCache {
	return &EnrollmentCache{svc: c.Enrollments, userID: userID}
}

func (c *EnrollmentCache) Refresh(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context) ([]Enrollment, error) {
		items, _, err := c.svc.List(ctx, EnrollmentFilter{UserID: c.userID})
		return items, err
	})
}

// Enroll reloads only when the new enrollment belongs to this cache's
// scope.
func (c *EnrollmentCache) Enroll(ctx context.Context, userID, courseID string) (*Enrollment, error) {
	created, err := c.svc.Enroll(ctx, userID, courseID)
	if err != nil {
		return nil, c.fail(err)
	}

	if c.userID == "" || c.userID == userID {
		return created, c.Refresh(ctx)
	}
	return created, nil
}

// UpdateProgress keeps the joined course and user of the cached item and
// takes progress and completion from the server.
func (c *EnrollmentCache) UpdateProgress(ctx context.Context, id string, progress float64) (*Enrollment, error) {
	updated, err := c.svc.UpdateProgress(ctx, id, progress)
	if err != nil {
		return nil, c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Progress = updated.Progress
			c.items[i].CompletedAt = updated.CompletedAt
			break
		}
	}
	c.err = nil

	return updated, nil
}

func (c *EnrollmentCache) Unenroll(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(e Enrollment) bool { return e.ID == id })
	c.err = nil

	return nil
}

// Find returns the cached enrollment of userID in courseID, or nil.
func (c *EnrollmentCache) Find(userID, courseID string) *Enrollment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.items {
		if c.items[i].UserID == userID && c.items[i].CourseID == courseID {
			e := c.items[i]
			return &e
		}
	}
	return nil
}

func (c *EnrollmentCache) IsEnrolled(userID, courseID string) bool {
	return c.Find(userID, courseID) != nil
}
