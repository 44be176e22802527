package jira

import (
	"context"
	"net/http"
	"strings"
	"sync"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jiradesk/internal/logging"
)

// Display names of the custom fields the client needs.
const (
	sprintFieldName      = "Sprint"
	storyPointsFieldName = "Story Points"
)

// FieldIDs holds the instance-specific ids of the custom fields. An empty id
// means the instance has no such field.
type FieldIDs struct {
	Sprint      string
	StoryPoints string
}

// FieldCache resolves FieldIDs from the field catalog once and remembers
// them until Reset. Load errors are not cached: a failed load is attempted
// again by the next caller.
type FieldCache struct {
	gateway *Gateway

	mu     sync.Mutex
	loaded bool
	ids    FieldIDs
}

// NewFieldCache creates an empty cache reading through gateway.
func NewFieldCache(gateway *Gateway) *FieldCache {
	return &FieldCache{gateway: gateway}
}

// EnsureLoaded returns the field ids, reading the catalog on first use.
//
// An *AuthError means the dependent operation must be abandoned. Any other
// error is soft: the returned ids (possibly empty) are still usable and the
// caller should proceed in degraded form after reporting it.
func (c *FieldCache) EnsureLoaded(ctx context.Context) (FieldIDs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.ids, nil
	}

	var catalog []jira.Field
	if err := c.gateway.Do(ctx, opLoadFields, http.MethodGet, platformPath("/field"), nil, nil, &catalog); err != nil {
		return c.ids, err
	}

	c.ids = resolveFieldIDs(catalog)
	c.loaded = true

	logging.Debug("field metadata loaded",
		"field_count", len(catalog),
		"sprint_field", c.ids.Sprint,
		"story_points_field", c.ids.StoryPoints)

	return c.ids, nil
}

// Loaded reports whether the catalog has been read.
func (c *FieldCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Reset forgets the resolved ids.
func (c *FieldCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.ids = FieldIDs{}
}

// resolveFieldIDs matches display names case-insensitively; the first
// occurrence of a name wins.
func resolveFieldIDs(catalog []jira.Field) FieldIDs {
	var ids FieldIDs
	for _, f := range catalog {
		if ids.Sprint == "" && strings.EqualFold(f.Name, sprintFieldName) {
			ids.Sprint = f.ID
		}
		if ids.StoryPoints == "" && strings.EqualFold(f.Name, storyPointsFieldName) {
			ids.StoryPoints = f.ID
		}
	}
	return ids
}
