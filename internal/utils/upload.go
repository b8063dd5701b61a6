package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveUpload writes a multipart file into dir under a random name and
// returns the stored path.  The original filename only contributes its
// extension; a UUID prevents collisions and path tricks from client-chosen
// names.
func SaveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}
