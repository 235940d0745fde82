package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	main "github.com/fwojciec/sitepush/cmd/sitepush"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_Confirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"full yes", "YES\n", false, true},
		{"no", "n\n", true, false},
		{"empty selects default yes", "\n", true, true},
		{"empty selects default no", "\n", false, false},
		{"end of input selects default", "", true, true},
		{"answer without newline", "y", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			p := main.NewPrompt(strings.NewReader(tt.input), out)

			got, err := p.Confirm(context.Background(), "Continue?", tt.def)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Continue?")
		})
	}

	t.Run("asks again after an unclear answer", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		p := main.NewPrompt(strings.NewReader("maybe\nn\n"), out)

		got, err := p.Confirm(context.Background(), "Continue?", true)

		require.NoError(t, err)
		assert.False(t, got)
		assert.Equal(t, 2, strings.Count(out.String(), "Continue? [Y/n]"))
		assert.Contains(t, out.String(), "Please answer y or n.")
	})

	t.Run("returns the context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := main.NewPrompt(strings.NewReader("y\n"), &bytes.Buffer{})

		_, err := p.Confirm(ctx, "Continue?", true)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
