package protocol

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassFields(t *testing.T) {
	c := &Class{Name: "Post"}
	c.AddField(&Field{Name: "id", Type: "uint"})
	c.AddField(&Field{Name: "title", Type: "string"})
	c.AddField(&Field{Name: "author_id", Type: "uint", Relation: &Relation{
		Model: "Post", TargetModel: "User", Field: "author_id", TargetField: "id",
	}})
	c.AddField(nil)
	c.AddField(&Field{Name: "title", Type: "text"})

	assert.Len(t, c.Fields, 3)
	f, ok := c.GetField("title")
	assert.True(t, ok)
	assert.Equal(t, "text", f.Type)
	assert.Equal(t, "title", c.Fields[1].Name)

	rels := c.Relations()
	assert.Len(t, rels, 1)
	assert.Equal(t, "Post.author_id->User.id", rels[0].Key())
}

func TestLoadError(t *testing.T) {
	err := NewLoadError("models.go", fs.ErrNotExist)
	assert.True(t, errors.Is(err, ErrLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "models.go")

	var le *LoadError
	assert.True(t, errors.As(error(err), &le))
	assert.Equal(t, "models.go", le.Path)
}
