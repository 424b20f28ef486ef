package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "generation key", key: "gen-123/bom.json"},
		{name: "enhancement key", key: "gen-123/enh-7/bom.json"},
		{name: "single dot kept verbatim", key: "gen-1/./bom.json"},
		{name: "empty", key: "", wantErr: true},
		{name: "whitespace", key: "  \t", wantErr: true},
		{name: "leading traversal", key: "../foo", wantErr: true},
		{name: "embedded traversal", key: "gen-1/../../etc/passwd", wantErr: true},
		{name: "double dot in filename", key: "gen-1/bom..json", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateKey(tt.key)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrKeyInvalid))
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.key, se.Key)
		})
	}
}
