package bay

import (
	"context"
	"fmt"

	"github.com/bayfiles/bay_sdk_go/internal/bayapi"
)

// File is one remote file identified by its id and info token. Size, SHA-1
// and name are fetched together on first access.
type File struct {
	client      *Client
	fileID      string
	infoToken   string
	deleteToken string

	size cached[int64]
	sha1 cached[string]
	name cached[string]

	linksURL    string
	downloadURL string
	deleteURL   string

	owner *Account
}

// FileOption configures a File.
type FileOption func(*File)

// WithDeleteToken allows the file to be deleted.
func WithDeleteToken(token string) FileOption {
	return func(f *File) {
		f.deleteToken = token
	}
}

// WithMetadata pre-resolves size, SHA-1 and name so no info request is needed.
func WithMetadata(size int64, sha1, name string) FileOption {
	return func(f *File) {
		f.size.set(size)
		f.sha1.set(sha1)
		f.name.set(name)
	}
}

// WithOwner sets the account whose session authenticates the file's requests.
func WithOwner(a *Account) FileOption {
	return func(f *File) {
		f.owner = a
	}
}

// NewFile returns a file handle. Without WithDeleteToken the file cannot be deleted.
func (c *Client) NewFile(fileID, infoToken string, opts ...FileOption) *File {
	f := &File{client: c, fileID: fileID, infoToken: infoToken}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// listedFile builds a File from an /account/files entry or an upload
// response; only members present in entry are resolved.
func (c *Client) listedFile(id string, entry *bayapi.Object, owner *Account) *File {
	infoToken, _ := entry.String("infoToken")
	deleteToken, _ := entry.String("deleteToken")
	f := c.NewFile(id, infoToken, WithDeleteToken(deleteToken), WithOwner(owner))
	if size, ok := entry.Int("size"); ok {
		f.size.set(size)
	}
	if sum, ok := entry.String("sha1"); ok {
		f.sha1.set(sum)
	}
	if name, ok := entry.String("filename"); ok {
		f.name.set(name)
	}
	return f
}

// FileID returns the server-assigned file identifier.
func (f *File) FileID() string { return f.fileID }

// InfoToken returns the token that authorizes /file/info lookups.
func (f *File) InfoToken() string { return f.infoToken }

// DeleteToken returns the token that authorizes deletion, or "" when it is
// unknown.
func (f *File) DeleteToken() string { return f.deleteToken }

// Owner returns the account the file was listed or uploaded with, or nil.
func (f *File) Owner() *Account { return f.owner }

// LinksURL returns the share page URL reported by the upload server. It is
// only known for files created by an Uploader and is empty otherwise.
func (f *File) LinksURL() string { return f.linksURL }

// DownloadURL returns the direct download URL, or "" for files not created
// by an Uploader.
func (f *File) DownloadURL() string { return f.downloadURL }

// DeleteURL returns the browser deletion URL, or "" for files not created
// by an Uploader.
func (f *File) DeleteURL() string { return f.deleteURL }

// SetUploadLinks records the URLs returned by the upload server.
func (f *File) SetUploadLinks(linksURL, downloadURL, deleteURL string) {
	f.linksURL = linksURL
	f.downloadURL = downloadURL
	f.deleteURL = deleteURL
}

// Size returns the file size in bytes.
func (f *File) Size(ctx context.Context) (int64, error) {
	if _, ok := f.size.get(); !ok {
		if err := f.info(ctx); err != nil {
			return 0, err
		}
	}
	v, _ := f.size.get()
	return v, nil
}

// SHA1 returns the hex SHA-1 of the file contents.
func (f *File) SHA1(ctx context.Context) (string, error) {
	if _, ok := f.sha1.get(); !ok {
		if err := f.info(ctx); err != nil {
			return "", err
		}
	}
	v, _ := f.sha1.get()
	return v, nil
}

// Name returns the display name.
func (f *File) Name(ctx context.Context) (string, error) {
	if _, ok := f.name.get(); !ok {
		if err := f.info(ctx); err != nil {
			return "", err
		}
	}
	v, _ := f.name.get()
	return v, nil
}

// Delete requests /file/delete/{fileId}/{deleteToken}. Without a delete
// token it fails with a *FileError wrapping ErrNoDeleteToken and sends nothing.
func (f *File) Delete(ctx context.Context) error {
	if f.deleteToken == "" {
		return &FileError{
			Message: fmt.Sprintf("delete token unknown: unable to delete file fileId=%s", f.fileID),
			Err:     ErrNoDeleteToken,
		}
	}
	path := "/file/delete/" + pathSegment(f.fileID) + "/" + pathSegment(f.deleteToken)
	req, err := f.client.NewRequest(ctx, path, sessionOf(f.owner))
	if err != nil {
		return err
	}
	_, err = req.Send(ctx, FileErrorKind)
	return err
}

func (f *File) info(ctx context.Context) error {
	path := "/file/info/" + pathSegment(f.fileID) + "/" + pathSegment(f.infoToken)
	req, err := f.client.NewRequest(ctx, path, sessionOf(f.owner))
	if err != nil {
		return err
	}
	if _, err := req.Send(ctx, FileErrorKind); err != nil {
		return err
	}
	size, _ := req.response.Int("size")
	sum, _ := req.response.String("sha1")
	name, _ := req.response.String("filename")
	f.size.set(size)
	f.sha1.set(sum)
	f.name.set(name)
	return nil
}
