package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SergeyParamoshkin/conduit/internal/actor"
	"github.com/SergeyParamoshkin/conduit/internal/model"
)

func TestTagsLoad(t *testing.T) {
	s, c, fx := Reduce(Loading, Context{}, actor.Init{})
	assert.Equal(t, Loading, s)
	assert.Equal(t, []actor.Effect{actor.Get("tagsRequest", "tags", &model.TagListResponse{})}, fx)

	s, c, fx = Reduce(s, c, actor.Done{ID: "tagsRequest", Output: &model.TagListResponse{Tags: []string{"go"}}})
	assert.Equal(t, TagsLoaded, s)
	assert.Equal(t, []string{"go"}, c.Tags)
	assert.Empty(t, fx)

	// loaded is final
	s, _, _ = Reduce(s, c, actor.Failed{ID: "tagsRequest"})
	assert.Equal(t, TagsLoaded, s)
}

func TestTagsError(t *testing.T) {
	errs := model.Errors{"status": {"Internal Server Error"}}
	s, c, _ := Reduce(Loading, Context{}, actor.Failed{ID: "tagsRequest", Errors: errs})
	assert.Equal(t, Errored, s)
	assert.Equal(t, errs, c.Errors)
	assert.True(t, actor.Matches(s, "errored"))
}
