package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"complete", "<!DOCTYPE html>\n<html lang=\"en\"></html>", true},
		{"upper case tags", "<HTML></HTML>", true},
		{"missing open", "<body></body></html>", false},
		{"missing close", "<html><body></body>", false},
		{"empty", "", false},
		{"plain text", "No code generated.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Validate(tt.in)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.in, out)
				return
			}
			assert.ErrorIs(t, err, ErrIncompleteDocument)
			assert.Empty(t, out)
		})
	}
}
