package httpx

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/spf13/afero"
)

// FormFile names a local file sent as a multipart form field. Name defaults
// to the base name of Path.
type FormFile struct {
	Field string
	Path  string
	Name  string
}

// MultipartBody opens every file on fsys and returns a reader streaming them
// as multipart/form-data together with the matching Content-Type. Missing
// files are reported before any byte is produced. The body is single-use, so
// requests carrying it must set DisableRetry.
func MultipartBody(fsys afero.Fs, files []FormFile) (io.ReadCloser, string, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	opened := make([]afero.File, 0, len(files))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, ff := range files {
		f, err := fsys.Open(ff.Path)
		if err != nil {
			closeAll()
			return nil, "", fmt.Errorf("httpx: open upload %q: %w", ff.Path, err)
		}
		opened = append(opened, f)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer closeAll()
		for i, ff := range files {
			name := ff.Name
			if name == "" {
				name = filepath.Base(ff.Path)
			}
			part, err := mw.CreateFormFile(ff.Field, name)
			if err != nil {
				_ = pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, opened[i]); err != nil {
				_ = pw.CloseWithError(fmt.Errorf("httpx: copy upload %q: %w", ff.Path, err))
				return
			}
		}
		_ = pw.CloseWithError(mw.Close())
	}()
	return pr, mw.FormDataContentType(), nil
}
