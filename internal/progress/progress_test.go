package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTerminal_NonTTY(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	assert.IsType(t, Nop{}, ForTerminal(f, false))
	assert.IsType(t, Nop{}, ForTerminal(f, true))
}

func TestBar_ZeroTotalIsInert(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	b := NewBar(f)
	b.Start(0)
	b.Advance("a")
	b.Finish()
	assert.Nil(t, b.printer)
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	s.Start(3)
	s.Advance("x")
	s.Finish()
}
