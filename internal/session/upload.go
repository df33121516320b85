package session

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Upload is a file the user picked, before any bytes are read.
type Upload struct {
	Name string
	// ContentType is the declared type; the image guard only looks at this.
	ContentType string
	// Size is informational; zero when unknown.
	Size int64
	Open func() (io.ReadCloser, error)
}

// IsImage reports whether a declared content type names an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// FromPath declares an upload for a local file. The type comes from the
// extension; extension-less files are sniffed. Read errors are deferred to
// Open so they surface as a read failure rather than here.
func FromPath(path string) Upload {
	path = cleanDroppedPath(path)
	up := Upload{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
	if info, err := os.Stat(path); err == nil {
		up.Size = info.Size()
	}
	up.ContentType = declaredType(path)
	return up
}

// FromBytes declares an upload backed by memory.
func FromBytes(name, contentType string, data []byte) Upload {
	return Upload{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func declaredType(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	return http.DetectContentType(head[:n])
}

// cleanDroppedPath undoes the quoting terminals apply when a file is
// dragged onto them.
func cleanDroppedPath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 {
		if (path[0] == '\'' && path[len(path)-1] == '\'') || (path[0] == '"' && path[len(path)-1] == '"') {
			path = path[1 : len(path)-1]
		}
	}
	path = strings.TrimPrefix(path, "file://")
	if strings.Contains(path, `\ `) {
		path = strings.ReplaceAll(path, `\ `, " ")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}
