package session

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	cases := map[string]bool{
		"image/png":        true,
		"image/jpeg":       true,
		"IMAGE/WEBP":       true,
		" image/gif ":      true,
		"image/svg+xml":    true,
		"":                 false,
		"application/pdf":  false,
		"text/plain":       false,
		"imagery/whatever": false,
		"video/mp4":        false,
	}
	for ct, want := range cases {
		assert.Equal(t, want, IsImage(ct), ct)
	}
}

func TestFromPathDeclaresTypeFromExtension(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"photo.png":  "image/png",
		"photo.JPG":  "image/jpeg",
		"notes.pdf":  "application/pdf",
		"blob.zzzzq": "application/octet-stream",
	}
	for name, want := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		up := FromPath(path)
		assert.Equal(t, name, up.Name)
		assert.Equal(t, want, up.ContentType, name)
		assert.Equal(t, int64(len("content")), up.Size)
	}
}

func TestFromPathSniffsExtensionlessFiles(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "screenshot")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))
	text := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(text, []byte("just words"), 0o644))

	assert.Equal(t, "image/png", FromPath(png).ContentType)
	assert.False(t, IsImage(FromPath(text).ContentType))
}

func TestFromPathOpenReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o644))

	rc, err := FromPath(path).Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
}

func TestCleanDroppedPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cases := map[string]string{
		"  /tmp/a.png  ":          "/tmp/a.png",
		"'/tmp/my photo.png'":     "/tmp/my photo.png",
		`"/tmp/my photo.png"`:     "/tmp/my photo.png",
		`/tmp/my\ photo.png`:      "/tmp/my photo.png",
		"file:///tmp/a.png":       "/tmp/a.png",
		"~/Pictures/a.png":        filepath.Join(home, "Pictures/a.png"),
		"'":                       "'",
		"relative/dir/image.webp": "relative/dir/image.webp",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanDroppedPath(in), in)
	}
}

func TestFromBytesReopens(t *testing.T) {
	up := FromBytes("x.png", "image/png", []byte("abc"))
	for i := 0; i < 2; i++ {
		rc, err := up.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))
	}
	assert.Equal(t, int64(3), up.Size)
}

func TestImageReleaseIsSafe(t *testing.T) {
	var nilImage *Image
	assert.NotPanics(t, func() { nilImage.release() })

	img := newImage(FromBytes("x.png", "image/png", nil))
	img.attach([]byte{1, 2, 3})
	assert.Equal(t, int64(3), img.info.Size)

	img.release()
	img.release()
	assert.True(t, img.released)
	assert.Nil(t, img.data)

	img.attach([]byte{4})
	assert.Nil(t, img.data)
}
