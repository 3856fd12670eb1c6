package api

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	boom := errors.New("boom")

	t.Run("from", func(t *testing.T) {
		assert.True(t, From(1, nil).IsOk())
		assert.False(t, From(0, boom).IsOk())

		v, err := From("x", nil).Unwrap()
		assert.Equal(t, "x", v)
		assert.NoError(t, err)
	})

	t.Run("map", func(t *testing.T) {
		r := Map(Ok("42"), strconv.Atoi)
		assert.Equal(t, 42, r.Value)
		assert.NoError(t, r.Err)

		r = Map(Ok("nope"), strconv.Atoi)
		assert.Error(t, r.Err)

		r = Map(Fail[string](boom), strconv.Atoi)
		assert.ErrorIs(t, r.Err, boom)
	})

	t.Run("flat map", func(t *testing.T) {
		double := func(n int) Result[int] { return Ok(n * 2) }
		assert.Equal(t, 4, FlatMap(Ok(2), double).Value)
		assert.ErrorIs(t, FlatMap(Fail[int](boom), double).Err, boom)
	})
}
