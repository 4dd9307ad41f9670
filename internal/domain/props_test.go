package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitebuilder/internal/domain"
)

func TestProps_CloneIsDeep(t *testing.T) {
	orig := domain.Props{
		"title": "x",
		"items": []any{map[string]any{"icon": "code"}},
		"tags":  []string{"a"},
		"meta":  map[string]any{"nested": []any{1, 2}},
	}
	c := orig.Clone()
	assert.Equal(t, orig, c)

	c["items"].([]any)[0].(map[string]any)["icon"] = "changed"
	c["tags"].([]string)[0] = "b"
	c["meta"].(map[string]any)["nested"].([]any)[0] = 9

	assert.Equal(t, "code", orig["items"].([]any)[0].(map[string]any)["icon"])
	assert.Equal(t, "a", orig["tags"].([]string)[0])
	assert.Equal(t, 1, orig["meta"].(map[string]any)["nested"].([]any)[0])
}

func TestProps_CloneNil(t *testing.T) {
	var p domain.Props
	assert.NotNil(t, p.Clone())
}

func TestProps_Merge(t *testing.T) {
	p := domain.Props{"a": 1, "b": 2}
	p.Merge(domain.Props{"b": 3, "c": 4})
	assert.Equal(t, domain.Props{"a": 1, "b": 3, "c": 4}, p)
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, domain.DirectionUp.Valid())
	assert.True(t, domain.DirectionDown.Valid())
	assert.False(t, domain.Direction("left").Valid())
}
