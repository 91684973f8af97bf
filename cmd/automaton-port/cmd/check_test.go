package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/automaton-port/internal/domain/checks"
)

func TestCheckCmd_InvalidTarget(t *testing.T) {
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"check", filepath.Join(t.TempDir(), "missing")})

	err = root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestCheckCmd_RequiresExactlyOneArg(t *testing.T) {
	for _, args := range [][]string{{"check"}, {"check", "a", "b"}} {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.Execute(), "args %v", args)
	}
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 101}
	assert.Equal(t, "exit status 101", err.Error())
}
