package infra

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStack_New(t *testing.T) {
	err := NewErrorStack("boom")
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	verbose := fmt.Sprintf("%+v", err)
	assert.True(t, strings.HasPrefix(verbose, "boom"))
	assert.Contains(t, verbose, "err_stack_test.go")
}

func TestErrorStack_WrapNil(t *testing.T) {
	assert.NoError(t, WrapErrorStack(nil))
	assert.NoError(t, WrapErrorStackWithMessage(nil, ""))
}

func TestErrorStack_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WrapErrorStackWithMessage(sentinel, "outer")
	require.Error(t, err)
	assert.Equal(t, "outer: sentinel", err.Error())
	assert.True(t, errors.Is(err, sentinel))

	err = WrapErrorStack(sentinel)
	assert.Equal(t, "sentinel", err.Error())
	assert.True(t, errors.Is(err, sentinel))
}
