package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

func TestWrapKeepsCode(t *testing.T) {
	base := New(CalibrationInput, "need four measurements")
	err := Wrap(base, "loading primaries")
	require.Equal(t, CalibrationInput, CodeOf(err))
	require.True(t, Is(err, CalibrationInput))
	require.False(t, Is(err, InvalidResponse))
	require.Equal(t, "loading primaries: need four measurements", err.Error())
	require.ErrorIs(t, err, base)
	require.ErrorIs(t, err, &Error{Code: CalibrationInput})
}

func TestWrapForeign(t *testing.T) {
	err := Wrapf(io.ErrUnexpectedEOF, "reading %s", "white.csv")
	require.Equal(t, Internal, CodeOf(err))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Nil(t, Wrap(nil, "nothing"))
	require.Equal(t, Code(""), CodeOf(io.EOF))
}

func TestWithCodeFindsInnerCode(t *testing.T) {
	inner := New(InputFormat, "bad row")
	err := WithCode(CalibrationInput, inner)
	require.Equal(t, CalibrationInput, CodeOf(err))
	require.True(t, Is(err, InputFormat))
	require.True(t, Is(fmt.Errorf("outer: %w", err), CalibrationInput))
	require.False(t, errors.Is(err, &Error{Code: LogSink}))
}
