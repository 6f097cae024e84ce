package types

import (
	"fmt"
	"os"
	"path/filepath"

	"medassist/api/internal/util"
)

// Image: выбранный пользователем файл.
type Image struct {
	Name string
	MIME string
	Data []byte
}

func (img Image) ContentType() string {
	return util.PickMIME(img.MIME, util.MIMEByExt(img.Name), img.Data)
}

func ImageFromFile(path string) (*Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("read image: %s is empty", path)
	}
	return &Image{Name: filepath.Base(path), Data: b}, nil
}
