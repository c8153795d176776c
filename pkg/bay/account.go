package bay

import (
	"context"
	"fmt"

	"github.com/bayfiles/bay_sdk_go/internal/bayapi"
)

// ProfileField names one of the six account profile attributes.
type ProfileField int

const (
	// FieldEmail is the account email address.
	FieldEmail ProfileField = iota
	// FieldFilesCount is the number of files stored on the account.
	FieldFilesCount
	// FieldStorage is the storage used, as reported by the server.
	FieldStorage
	// FieldPremium reports whether the account is premium.
	FieldPremium
	// FieldExpires is the expiry timestamp in unix seconds.
	FieldExpires
	// FieldCodes is the number of codes on the account.
	FieldCodes
)

func (f ProfileField) String() string {
	switch f {
	case FieldEmail:
		return "email"
	case FieldFilesCount:
		return "files"
	case FieldStorage:
		return "storage"
	case FieldPremium:
		return "premium"
	case FieldExpires:
		return "expires"
	case FieldCodes:
		return "codes"
	default:
		return fmt.Sprintf("ProfileField(%d)", int(f))
	}
}

// Profile is a snapshot of the account profile.
type Profile struct {
	Email      string
	FilesCount int64
	Storage    string
	Premium    bool
	Expires    int64 // unix seconds, informational only
	Codes      int64
}

// Account is one Bayfiles user. The session and profile are fetched on
// demand; the file list is fetched once per Account.
type Account struct {
	client   *Client
	username string
	password string

	session cached[string]

	email      cached[string]
	filesCount cached[int64]
	storage    cached[string]
	premium    cached[bool]
	expires    cached[int64]
	codes      cached[int64]

	files       []*File
	filesLoaded bool
}

// AccountOption configures an Account.
type AccountOption func(*Account)

// WithSession seeds a session token obtained earlier, skipping the login
// round trip until the token is needed again.
func WithSession(token string) AccountOption {
	return func(a *Account) {
		if token != "" {
			a.session.set(token)
		}
	}
}

// NewAccount returns an unauthenticated account for the credentials.
func (c *Client) NewAccount(username, password string, opts ...AccountOption) *Account {
	a := &Account{client: c, username: username, password: password}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Username returns the login name.
func (a *Account) Username() string { return a.username }

// Password returns the password the account logs in with.
func (a *Account) Password() string { return a.password }

// Session returns the cached session token, logging in first when there is none.
func (a *Account) Session(ctx context.Context) (string, error) {
	if token, ok := a.session.get(); ok && token != "" {
		return token, nil
	}
	if err := a.Login(ctx); err != nil {
		return "", err
	}
	token, _ := a.session.get()
	return token, nil
}

// Login requests /account/login/{username}/{password} and caches the session.
func (a *Account) Login(ctx context.Context) error {
	path := "/account/login/" + pathSegment(a.username) + "/" + pathSegment(a.password)
	req, err := a.client.NewRequest(ctx, path, nil)
	if err != nil {
		return err
	}
	if _, err := req.Send(ctx, AccountErrorKind); err != nil {
		return err
	}
	token, _ := req.response.String("session")
	a.session.set(token)
	return nil
}

// Logout requests /account/logout. The local session token and profile stay
// cached, so later calls keep using the now invalid token until Login is
// called again.
func (a *Account) Logout(ctx context.Context) error {
	req, err := a.client.NewRequest(ctx, "/account/logout", a)
	if err != nil {
		return err
	}
	_, err = req.Send(ctx, AccountErrorKind)
	return err
}

// Email returns the account e-mail address.
func (a *Account) Email(ctx context.Context) (string, error) {
	if err := a.info(ctx, FieldEmail); err != nil {
		return "", err
	}
	v, _ := a.email.get()
	return v, nil
}

// FilesCount returns the number of files stored on the account.
func (a *Account) FilesCount(ctx context.Context) (int64, error) {
	if err := a.info(ctx, FieldFilesCount); err != nil {
		return 0, err
	}
	v, _ := a.filesCount.get()
	return v, nil
}

// Storage returns the storage usage as reported by the API.
func (a *Account) Storage(ctx context.Context) (string, error) {
	if err := a.info(ctx, FieldStorage); err != nil {
		return "", err
	}
	v, _ := a.storage.get()
	return v, nil
}

// IsPremium reports whether the account is premium.
func (a *Account) IsPremium(ctx context.Context) (bool, error) {
	if err := a.info(ctx, FieldPremium); err != nil {
		return false, err
	}
	v, _ := a.premium.get()
	return v, nil
}

// Expires returns the expiry timestamp (unix seconds) reported by the API.
func (a *Account) Expires(ctx context.Context) (int64, error) {
	if err := a.info(ctx, FieldExpires); err != nil {
		return 0, err
	}
	v, _ := a.expires.get()
	return v, nil
}

// Codes returns the number of codes on the account.
func (a *Account) Codes(ctx context.Context) (int64, error) {
	if err := a.info(ctx, FieldCodes); err != nil {
		return 0, err
	}
	v, _ := a.codes.get()
	return v, nil
}

// Profile returns all six profile fields, fetching them if any is unresolved.
func (a *Account) Profile(ctx context.Context) (Profile, error) {
	for _, f := range []ProfileField{FieldEmail, FieldFilesCount, FieldStorage, FieldPremium, FieldExpires, FieldCodes} {
		if err := a.info(ctx, f); err != nil {
			return Profile{}, err
		}
	}
	p := Profile{}
	p.Email, _ = a.email.get()
	p.FilesCount, _ = a.filesCount.get()
	p.Storage, _ = a.storage.get()
	p.Premium, _ = a.premium.get()
	p.Expires, _ = a.expires.get()
	p.Codes, _ = a.codes.get()
	return p, nil
}

// Files returns the files owned by the account in the order the API lists
// them. The first call requests /account/files; later calls return the same
// slice without further requests.
func (a *Account) Files(ctx context.Context) ([]*File, error) {
	if a.filesLoaded {
		return a.files, nil
	}

	req, err := a.client.NewRequest(ctx, "/account/files", a)
	if err != nil {
		return nil, err
	}
	if _, err := req.Send(ctx, AccountErrorKind); err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(req.response.Keys()))
	for _, id := range req.response.Keys() {
		// The listing carries the "error" member next to the file entries.
		if id == bayapi.ErrorKey {
			continue
		}
		entry, err := req.response.Object(id)
		if err != nil {
			return nil, fmt.Errorf("bay: decode file %q: %w", id, err)
		}
		files = append(files, a.client.listedFile(id, entry, a))
	}
	a.files = files
	a.filesLoaded = true
	return a.files, nil
}

// EditField requests /account/edit/{key}/{value} and refreshes the profile
// from the response.
func (a *Account) EditField(ctx context.Context, key, value string) error {
	path := "/account/edit/" + pathSegment(key) + "/" + pathSegment(value)
	req, err := a.client.NewRequest(ctx, path, a)
	if err != nil {
		return err
	}
	if _, err := req.Send(ctx, AccountErrorKind); err != nil {
		return err
	}
	a.syncProfile(req.response)
	return nil
}

// EditEmail changes the account e-mail address.
func (a *Account) EditEmail(ctx context.Context, email string) error {
	return a.EditField(ctx, "email", email)
}

// EditPassword changes the remote password. The Account keeps logging in
// with the password it was created with.
func (a *Account) EditPassword(ctx context.Context, password string) error {
	return a.EditField(ctx, "password", password)
}

func (a *Account) info(ctx context.Context, field ProfileField) error {
	if a.resolved(field) {
		return nil
	}
	req, err := a.client.NewRequest(ctx, "/account/info", a)
	if err != nil {
		return err
	}
	if _, err := req.Send(ctx, AccountErrorKind); err != nil {
		return err
	}
	a.syncProfile(req.response)
	return nil
}

func (a *Account) resolved(field ProfileField) bool {
	var ok bool
	switch field {
	case FieldEmail:
		_, ok = a.email.get()
	case FieldFilesCount:
		_, ok = a.filesCount.get()
	case FieldStorage:
		_, ok = a.storage.get()
	case FieldPremium:
		_, ok = a.premium.get()
	case FieldExpires:
		_, ok = a.expires.get()
	case FieldCodes:
		_, ok = a.codes.get()
	}
	return ok
}

// syncProfile resolves all six fields from one response; absent members
// resolve to zero values.
func (a *Account) syncProfile(resp *bayapi.Object) {
	email, _ := resp.String("email")
	files, _ := resp.Int("files")
	storage, _ := resp.String("storage")
	premium, _ := resp.Bool("premium")
	expires, _ := resp.Int("expires")
	codes, _ := resp.Int("codes")

	a.email.set(email)
	a.filesCount.set(files)
	a.storage.set(storage)
	a.premium.set(premium)
	a.expires.set(expires)
	a.codes.set(codes)
}
