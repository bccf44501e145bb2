package gerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := NewErrKeyNotFound("writer foo not found")
	err = err.Wrap(fmt.Errorf("i'm a scary internal error"))
	require.Equal(t, "writer foo not found: i'm a scary internal error", err.Error())
	require.Equal(t, "writer foo not found", err.Message())

	err = err.EDetail("name", "foo")
	require.Equal(t, "writer foo not found [name=foo]: i'm a scary internal error", err.Error())
	require.Equal(t, "writer foo not found", err.Message())

	err = err.Wrap(NewErrObjectDisposed("bar").EDetail("name", "bar").Wrap(fmt.Errorf("i'm a scary internal error")))
	require.Equal(t, "writer foo not found [name=foo]: bar has been disposed [name=bar]: i'm a scary internal error", err.Error())
	require.Equal(t, "writer foo not found", err.Message())
}

func TestMultiError(t *testing.T) {
	var results *multierror.Error

	results = multierror.Append(results, fmt.Errorf("error 1: %w", errors.New("1")))
	results = multierror.Append(results, NewErrStopFailed("writer", errors.New("2")))
	results = multierror.Append(results, fmt.Errorf("error 3: %w", errors.New("3")))

	err := results.ErrorOrNil()
	require.True(t, IsStopFailed(err))

	var outerResults *multierror.Error
	outerResults = multierror.Append(err, fmt.Errorf("outer error 1: %w", errors.New("11")))

	outerErr := outerResults.ErrorOrNil()
	require.True(t, IsStopFailed(outerErr))
}
