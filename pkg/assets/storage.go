package assets

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage persists uploaded asset documents and returns the stored path.
type Storage interface {
	Save(file *multipart.FileHeader, assetID, kind string) (string, error)
}

type localStorage struct {
	dir string
}

// NewLocalStorage keeps uploads on the local disk under dir.
func NewLocalStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

func (s *localStorage) Save(file *multipart.FileHeader, assetID, kind string) (string, error) {
	// Random segment keeps concurrent uploads for the same asset apart.
	name := fmt.Sprintf("%s_%s_%s%s", assetID, kind, uuid.NewString(), filepath.Ext(file.Filename))
	dest := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return dest, nil
}
