package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  alice@example.com  \n"))

	got, err := GetSimpleText(reader, "Enter email", &out)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)
	assert.Contains(t, out.String(), "Enter email")
}

func TestGetSimpleTextPartialLineBeforeEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("no-newline"))

	got, err := GetSimpleText(reader, "Enter email", &out)

	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(reader, "Enter email", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("Secret123"), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	got, err := GetPassword(&out)

	require.NoError(t, err)
	assert.Equal(t, "Secret123", got)
	assert.Contains(t, out.String(), "Enter password")
}
