package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

func TestIndexContains(t *testing.T) {
	u := uri.FromPath("/w/A.ral")
	idx := source.Index{Offset: 5, Width: 3, File: u}

	assert.True(t, idx.Contains(5))
	assert.True(t, idx.Contains(7))
	assert.False(t, idx.Contains(8))
	assert.False(t, idx.Contains(4))
	assert.Equal(t, 8, idx.End())
}

func TestZeroIndex(t *testing.T) {
	u := uri.FromPath("/w/A.ral")
	idx := source.ZeroIndex(u)
	assert.True(t, idx.IsZero())
	assert.False(t, idx.Contains(0))
	assert.Equal(t, u, idx.File)
}

func TestHasErrors(t *testing.T) {
	u := uri.FromPath("/w/A.ral")
	msgs := []source.Message{
		source.Warningf(source.ZeroIndex(u), "unused variable %s", "x"),
	}
	assert.False(t, source.HasErrors(msgs))

	msgs = append(msgs, source.Errorf(source.ZeroIndex(u), "undefined %s", "X"))
	assert.True(t, source.HasErrors(msgs))
	assert.Len(t, source.Errors(msgs), 1)
}
