package formdef

import (
	"testing"

	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/docs/bc.pdf", []byte("%PDF-1.7"), 0o644))
	require.NoError(t, fs.MkdirAll("/docs/folder", 0o755))

	grade := Field{Name: "grade", Type: TypeSelect, Options: []string{"K1", "K2"}}

	tests := []struct {
		name     string
		field    Field
		raw      string
		want     any
		rejected bool
	}{
		{"text trimmed", Field{Name: "n"}, "  Ada ", "Ada", false},
		{"blank is nil", Field{Name: "n"}, "   ", nil, false},
		{"password untrimmed", Field{Name: "p", Type: TypePassword}, " s3cret ", " s3cret ", false},
		{"int", Field{Name: "age", Type: TypeNumber}, "4", 4, false},
		{"float", Field{Name: "fee", Type: TypeNumber}, "12.5", 12.5, false},
		{"not a number", Field{Name: "age", Type: TypeNumber}, "four", nil, true},
		{"select ok", grade, "K2", "K2", false},
		{"select unknown", grade, "K9", nil, true},
		{"file", Field{Name: "doc", Type: TypeFile}, "/docs/bc.pdf", LocalFile{Path: "/docs/bc.pdf", size: 8}, false},
		{"missing file", Field{Name: "doc", Type: TypeFile}, "/docs/nope.pdf", nil, true},
		{"directory", Field{Name: "doc", Type: TypeFile}, "/docs/folder", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(fs, tt.field, tt.raw)
			if tt.rejected {
				assert.ErrorIs(t, err, stepform.ErrRejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalFile(t *testing.T) {
	f := LocalFile{Path: "/docs/bc.pdf", size: 8}
	assert.Equal(t, "bc.pdf", f.Name())
	assert.Equal(t, int64(8), f.Size())
	assert.True(t, stepform.IsFile(f))
	assert.Equal(t, stepform.Data{"n": 1}, stepform.StripFiles(stepform.Data{"n": 1, "doc": f}))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "Ada", Format("Ada"))
	assert.Equal(t, "4", Format(4))
	assert.Equal(t, "4", Format(float64(4)))
	assert.Equal(t, "12.5", Format(12.5))
	assert.Equal(t, "/docs/bc.pdf", Format(LocalFile{Path: "/docs/bc.pdf"}))
}
