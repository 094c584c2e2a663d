package users

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// DefaultPicture is the sentinel profile picture every new account starts with.
const DefaultPicture = "default.jpg"

// ErrUnsupportedPicture is returned for uploads that are not jpg or png.
var ErrUnsupportedPicture = errors.New("unsupported picture format")

// DiskPictureStore writes uploaded pictures to a directory under random names,
// keeping the original extension.
type DiskPictureStore struct {
	dir string
}

// NewDiskPictureStore creates dir when missing.
func NewDiskPictureStore(dir string) (*DiskPictureStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskPictureStore{dir: dir}, nil
}

// Store writes data to <dir>/<random id><ext> and returns the file name.
func (p *DiskPictureStore) Store(data []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", ErrUnsupportedPicture
	}

	name := xid.New().String() + ext
	if err := ioutil.WriteFile(filepath.Join(p.dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}
