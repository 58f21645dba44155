package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontokit/vskit/backend"
	_ "github.com/ontokit/vskit/backend/memory"
)

func TestOpenRegisteredMethod(t *testing.T) {
	p, err := backend.Open(backend.Binding{Method: "memory", Shorthand: "g"})
	require.NoError(t, err)
	defer p.Close(context.Background())

	assert.Contains(t, backend.Methods(), "memory")
}

func TestOpenUnknownMethod(t *testing.T) {
	_, err := backend.Open(backend.Binding{Method: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBindingKey(t *testing.T) {
	a := backend.Binding{Method: "sqlite", Shorthand: "go.db"}
	b := backend.Binding{Method: "sqlite", Shorthand: "hp.db"}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), backend.Binding{Method: "sqlite", Shorthand: "go.db"}.Key())
}

func TestEffectivePredicates(t *testing.T) {
	var spec backend.TraversalSpec
	assert.Equal(t, []string{backend.DefaultPredicate}, spec.EffectivePredicates())

	spec.Predicates = []string{"BFO:0000050"}
	assert.Equal(t, []string{"BFO:0000050"}, spec.EffectivePredicates())
}

func TestErrorClassification(t *testing.T) {
	wrapped := func(err error) error {
		return errors.Join(errors.New("outer"), err)
	}

	t.Run("unavailable", func(t *testing.T) {
		err := &backend.UnavailableError{Backend: "go.db", Err: errors.New("connection refused")}
		assert.True(t, backend.IsUnavailable(wrapped(err)))
		assert.False(t, backend.IsUnknownNode(wrapped(err)))
		assert.Contains(t, err.Error(), "go.db")
	})

	t.Run("unknown node", func(t *testing.T) {
		err := &backend.UnknownNodeError{Backend: "go.db", Node: "GO:999"}
		assert.True(t, backend.IsUnknownNode(wrapped(err)))
		assert.Contains(t, err.Error(), "GO:999")
	})

	t.Run("timeout", func(t *testing.T) {
		err := &backend.TimeoutError{Backend: "ols:go", Err: context.DeadlineExceeded}
		assert.True(t, backend.IsTimeout(wrapped(err)))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
