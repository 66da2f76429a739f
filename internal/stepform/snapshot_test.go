package stepform

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "scan.pdf"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"file interface", fakeFile{name: "a.png"}, true},
		{"os file", f, true},
		{"multipart header", &multipart.FileHeader{Filename: "a.png"}, true},
		{"multipart list", []*multipart.FileHeader{{Filename: "a.png"}}, true},
		{"string", "a.png", false},
		{"nil", nil, false},
		{"map", map[string]any{"name": "a.png"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFile(tt.v))
		})
	}
}

func TestStripFiles(t *testing.T) {
	in := Data{"name": "Ada", "photo": fakeFile{name: "ada.png"}, "age": 7}
	out := StripFiles(in)

	assert.Equal(t, Data{"name": "Ada", "age": 7}, out)
	assert.Contains(t, in, "photo", "input is left alone")
	assert.NotNil(t, StripFiles(nil))
}

func TestCodecs(t *testing.T) {
	saved := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	snap := Snapshot{
		Version:        snapshotVersion,
		ID:             "c0ffee",
		SavedAt:        saved,
		FormData:       Data{"name": "Ada", "tags": []any{"a", "b"}},
		ActiveStep:     2,
		CompletedSteps: []int{0, 1},
	}

	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			b, err := codec.Encode(snap)
			require.NoError(t, err)
			got, err := codec.Decode(b)
			require.NoError(t, err)

			assert.Equal(t, snap.Version, got.Version)
			assert.Equal(t, snap.ID, got.ID)
			assert.True(t, saved.Equal(got.SavedAt))
			assert.Equal(t, 2, got.ActiveStep)
			assert.Equal(t, []int{0, 1}, got.CompletedSteps)
			assert.Equal(t, "Ada", got.FormData["name"])
			assert.Equal(t, []any{"a", "b"}, got.FormData["tags"])
		})
	}
}

func TestCodecs_DecodeGarbage(t *testing.T) {
	for _, c := range []Codec{JSONCodec{}, MsgPackCodec{}} {
		_, err := c.Decode([]byte{0xc1, '{'})
		assert.Error(t, err, c.Name())
	}
}

func TestCodecByName_Default(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = CodecByName("gob")
	assert.Error(t, err)
}

func TestKeyForRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/admin/students/new", "stepform_admin-students-new"},
		{"/packages/new", "stepform_packages-new"},
		{"/Cards/Assign", "stepform_cards-assign"},
		{"/", "stepform_root"},
		{"", "stepform_root"},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyForRoute(tt.route))
		})
	}

	assert.NotEqual(t, KeyForRoute("/a/new"), KeyForRoute("/b/new"))
	assert.Equal(t, KeyForRoute("/admin/students"), KeyForRoute("/admin/Students"), "case is folded")
	assert.Equal(t, KeyForRoute("/a-b"), KeyForRoute("/a.b"), "punctuation is folded")
}

func TestDataHelpers(t *testing.T) {
	d := Data{"name": "Ada", "age": 7}
	assert.Equal(t, "Ada", d.String("name"))
	assert.Empty(t, d.String("age"))
	assert.Empty(t, d.String("missing"))

	var nilData Data
	clone := nilData.Clone()
	require.NotNil(t, clone)
	clone["x"] = 1
	assert.Nil(t, nilData)
}
