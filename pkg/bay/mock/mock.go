// Package mock implements the Bayfiles API wire protocol in memory. The API
// type is an http.Handler, so it can back an httptest.Server, the sandbox
// command, or an *http.Client directly through RoundTripper.
package mock

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bayfiles/bay_sdk_go/internal/devseed"
)

// Error messages returned in the "error" member.
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrInvalidSession     = "invalid session"
	ErrInvalidFile        = "invalid file"
	ErrInvalidToken       = "invalid token"
	ErrInvalidKey         = "invalid key"
	ErrInvalidUpload      = "invalid upload"
	ErrUnknownMethod      = "unknown method"
)

const maxUploadMemory = 32 << 20

// Account is a user known to the emulator.
type Account struct {
	Username string
	Password string
	Email    string
	Storage  string // reported verbatim; computed from stored bytes when empty
	Premium  bool
	Expires  int64
	Codes    int64
}

// FileRecord describes a stored file.
type FileRecord struct {
	ID          string
	InfoToken   string
	DeleteToken string
	Name        string
	SHA1        string
	Size        int64
	Owner       string
}

type storedFile struct {
	FileRecord
	data []byte
}

// API is an in-memory Bayfiles API.
type API struct {
	mu       sync.Mutex
	accounts map[string]*Account
	sessions map[string]string // token -> username
	files    map[string]*storedFile
	order    []string
	uploads  map[string]string // upload id -> owner username, "" for anonymous
	calls    int
}

// New constructs an empty API.
func New() *API {
	return &API{
		accounts: make(map[string]*Account),
		sessions: make(map[string]string),
		files:    make(map[string]*storedFile),
		uploads:  make(map[string]string),
	}
}

// AddAccount registers an account.
func (a *API) AddAccount(acc Account) error {
	if strings.TrimSpace(acc.Username) == "" {
		return fmt.Errorf("mock bay: username is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[acc.Username]; ok {
		return fmt.Errorf("mock bay: account %q already exists", acc.Username)
	}
	cp := acc
	a.accounts[acc.Username] = &cp
	return nil
}

// AddFile stores data under a generated id and tokens. An empty owner
// stores an anonymous file.
func (a *API) AddFile(owner, name string, data []byte) (FileRecord, error) {
	return a.addFile(FileRecord{Owner: owner, Name: name}, data)
}

func (a *API) addFile(rec FileRecord, data []byte) (FileRecord, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return FileRecord{}, fmt.Errorf("mock bay: file name is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if rec.Owner != "" {
		if _, ok := a.accounts[rec.Owner]; !ok {
			return FileRecord{}, fmt.Errorf("mock bay: unknown owner %q", rec.Owner)
		}
	}
	if rec.ID == "" {
		rec.ID = newFileID()
	}
	if _, dup := a.files[rec.ID]; dup {
		return FileRecord{}, fmt.Errorf("mock bay: file %q already exists", rec.ID)
	}
	if rec.InfoToken == "" {
		rec.InfoToken = uuid.NewString()
	}
	if rec.DeleteToken == "" {
		rec.DeleteToken = uuid.NewString()
	}
	sum := sha1.Sum(data)
	rec.SHA1 = hex.EncodeToString(sum[:])
	rec.Size = int64(len(data))
	a.files[rec.ID] = &storedFile{FileRecord: rec, data: append([]byte(nil), data...)}
	a.order = append(a.order, rec.ID)
	return rec, nil
}

// Seed loads accounts and files from a seed document.
func (a *API) Seed(s *devseed.Seed) error {
	if s == nil {
		return nil
	}
	for _, acc := range s.Accounts {
		err := a.AddAccount(Account{
			Username: acc.Username,
			Password: acc.Password,
			Email:    acc.Email,
			Storage:  acc.Storage,
			Premium:  acc.Premium,
			Expires:  acc.Expires,
			Codes:    acc.Codes,
		})
		if err != nil {
			return err
		}
		if err := a.seedFiles(acc.Username, acc.Files); err != nil {
			return err
		}
	}
	return a.seedFiles("", s.Files)
}

func (a *API) seedFiles(owner string, files []devseed.FileSeed) error {
	for _, f := range files {
		data, err := f.Data()
		if err != nil {
			return err
		}
		rec := FileRecord{ID: f.ID, InfoToken: f.InfoToken, DeleteToken: f.DeleteToken, Name: f.Name, Owner: owner}
		if _, err := a.addFile(rec, data); err != nil {
			return err
		}
	}
	return nil
}

// File returns a stored file by id.
func (a *API) File(id string) (FileRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[id]
	if !ok {
		return FileRecord{}, false
	}
	return f.FileRecord, true
}

// Calls returns the number of requests served since creation or ResetCalls.
func (a *API) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// ResetCalls zeroes the request counter.
func (a *API) ResetCalls() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = 0
}

// RoundTripper serves requests in-process, ignoring the target host.
func (a *API) RoundTripper() http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		a.ServeHTTP(rec, req)
		if req.Body != nil {
			_ = req.Body.Close()
		}
		resp := rec.Result()
		resp.Request = req
		return resp, nil
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// ServeHTTP routes API paths with or without the /v1 prefix, plus the
// upload, progress and download paths handed out by /file/uploadUrl.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	segs, err := segments(r.URL.EscapedPath())
	if err != nil {
		writeMembers(w, http.StatusBadRequest, member{"error", err.Error()})
		return
	}

	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	session := r.URL.Query().Get("session")
	switch {
	case match(segs, "account", "login", "*", "*"):
		a.login(w, segs[2], segs[3])
	case match(segs, "account", "logout"):
		a.logout(w, session)
	case match(segs, "account", "info"):
		a.info(w, session)
	case match(segs, "account", "edit", "*", "*"):
		a.edit(w, session, segs[2], segs[3])
	case match(segs, "account", "files"):
		a.listFiles(w, session)
	case match(segs, "file", "info", "*", "*"):
		a.fileInfo(w, segs[2], segs[3])
	case match(segs, "file", "delete", "*", "*"):
		a.deleteFile(w, segs[2], segs[3])
	case match(segs, "file", "uploadUrl"):
		a.uploadURL(w, r, session)
	case match(segs, "upload", "*"):
		a.upload(w, r, segs[1])
	case match(segs, "progress", "*"):
		a.progress(w, segs[1])
	case match(segs, "download", "*"):
		a.download(w, segs[1])
	default:
		writeMembers(w, http.StatusNotFound, member{"error", ErrUnknownMethod})
	}
}

func (a *API) login(w http.ResponseWriter, username, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[username]
	if !ok || acc.Password != password {
		writeMembers(w, http.StatusOK, member{"session", ""}, member{"error", ErrInvalidCredentials})
		return
	}
	token := uuid.NewString()
	a.sessions[token] = username
	writeMembers(w, http.StatusOK, member{"session", token}, member{"error", ""})
}

func (a *API) logout(w http.ResponseWriter, session string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.sessions[session]; !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidSession})
		return
	}
	delete(a.sessions, session)
	writeMembers(w, http.StatusOK, member{"error", ""})
}

func (a *API) info(w http.ResponseWriter, session string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accountFor(session)
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidSession})
		return
	}
	writeMembers(w, http.StatusOK, a.profile(acc)...)
}

func (a *API) edit(w http.ResponseWriter, session, key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accountFor(session)
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidSession})
		return
	}
	switch key {
	case "email":
		acc.Email = value
	case "password":
		acc.Password = value
	default:
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidKey})
		return
	}
	writeMembers(w, http.StatusOK, a.profile(acc)...)
}

func (a *API) listFiles(w http.ResponseWriter, session string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accountFor(session)
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidSession})
		return
	}
	members := make([]member, 0, len(a.order)+1)
	for _, id := range a.order {
		f := a.files[id]
		if f.Owner != acc.Username {
			continue
		}
		members = append(members, member{id, map[string]any{
			"infoToken":   f.InfoToken,
			"deleteToken": f.DeleteToken,
			"size":        f.Size,
			"sha1":        f.SHA1,
			"filename":    f.Name,
		}})
	}
	members = append(members, member{"error", ""})
	writeMembers(w, http.StatusOK, members...)
}

func (a *API) fileInfo(w http.ResponseWriter, id, infoToken string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[id]
	if !ok || f.InfoToken != infoToken {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidFile})
		return
	}
	writeMembers(w, http.StatusOK,
		member{"size", f.Size},
		member{"sha1", f.SHA1},
		member{"filename", f.Name},
		member{"error", ""},
	)
}

func (a *API) deleteFile(w http.ResponseWriter, id, deleteToken string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[id]
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidFile})
		return
	}
	if f.DeleteToken != deleteToken {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidToken})
		return
	}
	delete(a.files, id)
	for i, existing := range a.order {
		if existing == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	writeMembers(w, http.StatusOK, member{"error", ""})
}

func (a *API) uploadURL(w http.ResponseWriter, r *http.Request, session string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	owner := ""
	if session != "" {
		acc, ok := a.accountFor(session)
		if !ok {
			writeMembers(w, http.StatusOK, member{"error", ErrInvalidSession})
			return
		}
		owner = acc.Username
	}
	id := uuid.NewString()
	a.uploads[id] = owner
	base := baseURL(r)
	writeMembers(w, http.StatusOK,
		member{"uploadUrl", base + "/upload/" + id},
		member{"progressUrl", base + "/progress/" + id},
		member{"error", ""},
	)
}

func (a *API) upload(w http.ResponseWriter, r *http.Request, uploadID string) {
	if r.Method != http.MethodPost {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}
	a.mu.Lock()
	owner, ok := a.uploads[uploadID]
	a.mu.Unlock()
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}

	rec, err := a.addFile(FileRecord{Owner: owner, Name: header.Filename}, data)
	if err != nil {
		writeMembers(w, http.StatusOK, member{"error", err.Error()})
		return
	}
	base := baseURL(r)
	writeMembers(w, http.StatusOK,
		member{"fileId", rec.ID},
		member{"infoToken", rec.InfoToken},
		member{"deleteToken", rec.DeleteToken},
		member{"size", rec.Size},
		member{"sha1", rec.SHA1},
		member{"linksUrl", base + "/links/" + rec.ID},
		member{"downloadUrl", base + "/download/" + rec.ID},
		member{"deleteUrl", base + "/del/" + rec.ID + "/" + rec.DeleteToken},
		member{"error", ""},
	)
}

func (a *API) progress(w http.ResponseWriter, uploadID string) {
	a.mu.Lock()
	_, ok := a.uploads[uploadID]
	a.mu.Unlock()
	if !ok {
		writeMembers(w, http.StatusOK, member{"error", ErrInvalidUpload})
		return
	}
	writeMembers(w, http.StatusOK, member{"progress", 100}, member{"error", ""})
}

func (a *API) download(w http.ResponseWriter, id string) {
	a.mu.Lock()
	f, ok := a.files[id]
	var (
		data []byte
		name string
	)
	if ok {
		data = append([]byte(nil), f.data...)
		name = f.Name
	}
	a.mu.Unlock()
	if !ok {
		writeMembers(w, http.StatusNotFound, member{"error", ErrInvalidFile})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

// accountFor resolves a session token; callers hold a.mu.
func (a *API) accountFor(session string) (*Account, bool) {
	username, ok := a.sessions[session]
	if !ok {
		return nil, false
	}
	acc, ok := a.accounts[username]
	return acc, ok
}

// profile renders the /account/info members; callers hold a.mu.
func (a *API) profile(acc *Account) []member {
	var count, used int64
	for _, f := range a.files {
		if f.Owner == acc.Username {
			count++
			used += f.Size
		}
	}
	storage := acc.Storage
	if storage == "" {
		storage = fmt.Sprintf("%dB", used)
	}
	premium := 0
	if acc.Premium {
		premium = 1
	}
	return []member{
		{"email", acc.Email},
		{"files", count},
		{"storage", storage},
		{"premium", premium},
		{"expires", acc.Expires},
		{"codes", acc.Codes},
		{"error", ""},
	}
}

type member struct {
	key   string
	value any
}

// writeMembers encodes members as a JSON object in the given order.
func writeMembers(w http.ResponseWriter, status int, members ...member) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(m.key)
		value, err := json.Marshal(m.value)
		if err != nil {
			value = []byte("null")
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func segments(escapedPath string) ([]string, error) {
	p := strings.TrimPrefix(escapedPath, "/v1")
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		u, err := url.PathUnescape(s)
		if err != nil {
			return nil, fmt.Errorf("mock bay: bad path segment %q", s)
		}
		out = append(out, u)
	}
	return out, nil
}

func match(segs []string, pattern ...string) bool {
	if len(segs) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != segs[i] {
			return false
		}
	}
	return true
}

func baseURL(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + host
}

func newFileID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
