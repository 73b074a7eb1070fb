// AngelaMos | 2026
// repository_json.go

package course

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type jsonRepository struct {
	db *core.JSONDB
}

func NewJSONRepository(db *core.JSONDB) Repository {
	return &jsonRepository{db: db}
}

func (r *jsonRepository) load(tx *core.JSONTx) ([]Course, error) {
	courses, err := core.Decode[Course](tx, core.CollectionCourses)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].Tags == nil {
			courses[i].Tags = Tags{}
		}
	}
	return courses, nil
}

func (r *jsonRepository) Create(_ context.Context, c *Course) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		if indexByID(courses, c.ID) >= 0 {
			return fmt.Errorf("create course: %w", core.ErrDuplicateKey)
		}
		return core.Encode(tx, core.CollectionCourses, append(courses, *c))
	})
}

func (r *jsonRepository) GetByID(_ context.Context, id string) (*Course, error) {
	var found *Course
	err := r.db.View(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return err
		}
		if i := indexByID(courses, id); i >= 0 {
			found = &courses[i]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("get course: %w", core.ErrNotFound)
	}

	return found, nil
}

func (r *jsonRepository) GetByIDs(
	_ context.Context,
	ids []string,
) (map[string]*Course, error) {
	out := make(map[string]*Course, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	err := r.db.View(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return err
		}
		for i := range courses {
			if slices.Contains(ids, courses[i].ID) {
				out[courses[i].ID] = &courses[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get courses by id: %w", err)
	}

	return out, nil
}

func (r *jsonRepository) Update(_ context.Context, c *Course) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("update course: %w", err)
		}

		idx := indexByID(courses, c.ID)
		if idx < 0 {
			return fmt.Errorf("update course: %w", core.ErrNotFound)
		}

		courses[idx] = *c
		return core.Encode(tx, core.CollectionCourses, courses)
	})
}

func (r *jsonRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}

		idx := indexByID(courses, id)
		if idx < 0 {
			return fmt.Errorf("delete course: %w", core.ErrNotFound)
		}

		return core.Encode(tx, core.CollectionCourses, slices.Delete(courses, idx, idx+1))
	})
}

func (r *jsonRepository) List(
	_ context.Context,
	params ListCoursesParams,
) ([]Course, int, error) {
	var matched []Course
	err := r.db.View(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return err
		}
		for _, c := range courses {
			if matches(&c, params) {
				matched = append(matched, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	sortCourses(matched, params.Sort, params.Descending())

	return core.Page(matched, params.ListParams), len(matched), nil
}

func (r *jsonRepository) CountByStatus(_ context.Context) (StatusCounts, error) {
	var counts StatusCounts
	err := r.db.View(func(tx *core.JSONTx) error {
		courses, err := r.load(tx)
		if err != nil {
			return err
		}
		for _, c := range courses {
			counts.Total++
			switch c.Status {
			case StatusPublished:
				counts.Published++
			case StatusDraft:
				counts.Draft++
			}
		}
		return nil
	})
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count courses: %w", err)
	}

	return counts, nil
}

// matches applies the list filters. The free-text query looks at title,
// instructor and every tag.
func matches(c *Course, params ListCoursesParams) bool {
	if params.Level != "" && c.Level != params.Level {
		return false
	}
	if params.Status != "" && c.Status != params.Status {
		return false
	}
	if params.Tag != "" && !c.HasTag(params.Tag) {
		return false
	}
	if params.Query == "" {
		return true
	}

	fields := append([]string{c.Title, c.Instructor}, c.Tags...)
	return core.ContainsFold(params.Query, fields...)
}

func indexByID(courses []Course, id string) int {
	return slices.IndexFunc(courses, func(c Course) bool { return c.ID == id })
}

func sortCourses(courses []Course, field string, desc bool) {
	var less func(a, b Course) int
	switch field {
	case "title":
		less = func(a, b Course) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case "createdAt":
		less = func(a, b Course) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updatedAt":
		less = func(a, b Course) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case "students":
		less = func(a, b Course) int { return cmp.Compare(a.Students, b.Students) }
	default:
		return
	}

	slices.SortStableFunc(courses, func(a, b Course) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}
