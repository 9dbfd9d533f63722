package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedirgenError_ErrorString(t *testing.T) {
	err := New(CategoryConfig, SeverityError, "bad config")
	require.Equal(t, "config (error): bad config", err.Error())

	wrapped := Wrap(fmt.Errorf("no such file"), CategoryConfig, SeverityError, "bad config")
	require.Equal(t, "config (error): bad config: no such file", wrapped.Error())
}

func TestRedirgenError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, CategoryBuild, SeverityError, "build failed")
	require.True(t, stderrors.Is(err, cause))
}

func TestRedirgenError_WithContext(t *testing.T) {
	err := New(CategoryContent, SeverityError, "scan failed").
		WithContext("path", "/content").
		WithContext("pages", 3)
	require.Equal(t, "/content", err.Context["path"])
	require.Equal(t, 3, err.Context["pages"])
}

func TestIsCategory(t *testing.T) {
	err := ConfigError(nil, "missing file")
	require.True(t, IsCategory(err, CategoryConfig))
	require.False(t, IsCategory(err, CategoryBuild))
	require.False(t, IsCategory(fmt.Errorf("plain"), CategoryConfig))
}

func TestGetCategory_PlainError_IsInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
	require.Equal(t, CategoryValidation, GetCategory(ValidationError("bad flag")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	cases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{ValidationError("bad flag"), 2},
		{ConfigError(nil, "missing"), 7},
		{New(CategoryHistory, SeverityError, "db locked"), 8},
		{BuildError(nil, "emit failed"), 11},
		{New(CategoryRuntime, SeverityError, "watcher died"), 12},
		{New(CategoryInternal, SeverityFatal, "bug"), 10},
		{fmt.Errorf("plain"), 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.code, a.ExitCodeFor(tc.err))
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	require.Equal(t, "", a.FormatError(nil))
	require.Equal(t, "missing file", a.FormatError(ConfigError(nil, "missing file")))
	require.Equal(t, "build: emit failed", a.FormatError(BuildError(nil, "emit failed")))
	require.Equal(t, "Error: plain", a.FormatError(fmt.Errorf("plain")))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Equal(t, "config (error): missing file", verbose.FormatError(ConfigError(nil, "missing file")))
}
