// AngelaMos | 2026
// entity.go

package course

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"

	StatusPublished = "Published"
	StatusDraft     = "Draft"
)

type Course struct {
	ID          string    `db:"id"          json:"id"`
	Title       string    `db:"title"       json:"title"`
	Description string    `db:"description" json:"description"`
	Instructor  string    `db:"instructor"  json:"instructor"`
	Duration    string    `db:"duration"    json:"duration"`
	Level       string    `db:"level"       json:"level"`
	Status      string    `db:"status"      json:"status"`
	Tags        Tags      `db:"tags"        json:"tags"`
	Thumbnail   string    `db:"thumbnail"   json:"thumbnail"`
	Students    int       `db:"students"    json:"students"`
	CreatedAt   time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updatedAt"`
}

// HasTag is an exact, case-sensitive match.
func (c *Course) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags is stored as a JSON array in a text column and always encodes as
// an array, never null.
type Tags []string

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Value keeps tags readable in the column: no HTML escaping and no
// trailing newline from the encoder.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(t)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}

	*t = out
	return nil
}

// StatusCounts is the per-status breakdown used by platform stats.
type StatusCounts struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
}
