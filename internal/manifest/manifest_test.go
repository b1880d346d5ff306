package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fetchctl/fetchctl/internal/errors"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
downloads:
  - url: https://example.com/a/foo.txt
  - url: https://example.com/big.iso
    file_name: bar.bin
`)

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Downloads, 2)

	assert.Equal(t, "https://example.com/a/foo.txt", m.Downloads[0].URL)
	assert.Equal(t, "", m.Downloads[0].FileName)
	assert.Equal(t, "bar.bin", m.Downloads[1].FileName)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "downloads: [url: {")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	path := writeManifest(t, "downloads: []")
	_, err := Load(path)
	assert.ErrorIs(t, err, apperrors.ErrManifestEmpty)
}

func TestLoad_RelativeURL(t *testing.T) {
	path := writeManifest(t, `
downloads:
  - url: /just/a/path
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingURL(t *testing.T) {
	path := writeManifest(t, `
downloads:
  - file_name: orphan.bin
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDestinationName(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "last path segment",
			entry: Entry{URL: "https://host/a/foo.txt"},
			want:  "foo.txt",
		},
		{
			name:  "explicit file name wins",
			entry: Entry{URL: "https://host/a/foo.txt", FileName: "bar.bin"},
			want:  "bar.bin",
		},
		{
			name:  "empty path falls back",
			entry: Entry{URL: "https://host"},
			want:  "index.html",
		},
		{
			name:  "trailing slash skips empty segment",
			entry: Entry{URL: "https://host/dir/"},
			want:  "dir",
		},
		{
			name:  "root path falls back",
			entry: Entry{URL: "https://host/"},
			want:  "index.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.DestinationName())
		})
	}
}
