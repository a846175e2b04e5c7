package storage

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// Local 保存到本地目录，通过 BaseURL 对外访问
type Local struct {
	SaveDir string
	BaseURL string
}

func NewLocal(saveDir, baseURL string) *Local {
	return &Local{
		SaveDir: saveDir,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (l *Local) Upload(_ context.Context, fh *multipart.FileHeader) (*Uploaded, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := os.MkdirAll(l.SaveDir, os.ModePerm); err != nil {
		return nil, err
	}

	name := objectName(fh.Filename)
	dst, err := os.Create(filepath.Join(l.SaveDir, name))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		return nil, err
	}

	return &Uploaded{
		URL:         l.BaseURL + "/" + name,
		Key:         name,
		ContentType: contentType(fh),
		Size:        size,
	}, nil
}
