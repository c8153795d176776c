package bay

import (
	"context"
	"net/http"
	"path/filepath"
)

// Uploader obtains an upload target from /file/uploadUrl and posts files to it.
type Uploader struct {
	client      *Client
	uploadURL   string
	progressURL string
}

// NewUploader returns an Uploader with no upload target yet.
func (c *Client) NewUploader() *Uploader {
	return &Uploader{client: c}
}

// UploadURL returns the cached upload target, empty before Prepare.
func (u *Uploader) UploadURL() string { return u.uploadURL }

// ProgressURL returns the cached progress URL, empty before Prepare.
func (u *Uploader) ProgressURL() string { return u.progressURL }

// Prepare requests an upload and a progress URL, authenticated as owner when
// it is not nil, and caches both.
func (u *Uploader) Prepare(ctx context.Context, owner *Account) error {
	req, err := u.client.NewRequest(ctx, "/file/uploadUrl", sessionOf(owner))
	if err != nil {
		return err
	}
	if _, err := req.Send(ctx, FileErrorKind); err != nil {
		return err
	}
	u.uploadURL, _ = req.response.String("uploadUrl")
	u.progressURL, _ = req.response.String("progressUrl")
	return nil
}

// Send uploads localPath and returns the created file, named after the base
// name of localPath and owned by owner (which may be nil).
func (u *Uploader) Send(ctx context.Context, localPath string, owner *Account) (*File, error) {
	return u.SendAs(ctx, localPath, filepath.Base(localPath), owner)
}

// SendAs is Send with an explicit file name, which is also the name sent to
// the upload server. Prepare is called first when no upload URL is cached.
func (u *Uploader) SendAs(ctx context.Context, localPath, name string, owner *Account) (*File, error) {
	if u.uploadURL == "" {
		if err := u.Prepare(ctx, owner); err != nil {
			return nil, err
		}
	}
	if u.uploadURL == "" {
		return nil, &FileError{Message: "upload URL missing from /file/uploadUrl response", Err: ErrMissingField}
	}

	req, err := u.client.NewRequest(ctx, u.uploadURL, sessionOf(owner))
	if err != nil {
		return nil, err
	}
	req.SetMethod(http.MethodPost)
	req.AttachFileAs("file", localPath, name)
	if _, err := req.Send(ctx, FileErrorKind); err != nil {
		return nil, err
	}

	resp := req.response
	fileID, _ := resp.String("fileId")
	if fileID == "" {
		return nil, &FileError{Message: "upload response missing fileId", Err: ErrMissingField}
	}
	infoToken, _ := resp.String("infoToken")
	deleteToken, _ := resp.String("deleteToken")
	size, _ := resp.Int("size")
	sum, _ := resp.String("sha1")

	f := u.client.NewFile(fileID, infoToken,
		WithDeleteToken(deleteToken),
		WithMetadata(size, sum, name),
		WithOwner(owner),
	)
	links, _ := resp.String("linksUrl")
	download, _ := resp.String("downloadUrl")
	del, _ := resp.String("deleteUrl")
	f.SetUploadLinks(links, download, del)
	return f, nil
}
