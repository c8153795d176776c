package bay_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

const profileBody = `{"email":"a@b.com","files":3,"storage":"10MB","premium":0,"expires":1700000000,"codes":2,"error":""}`

func TestProfileGetterLogsInOnceAndCachesAllFields(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"session":"tok-1","error":""}`)
	ft.respond("/account/info", profileBody)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret")
	email, err := acc.Email(ctx)
	if err != nil {
		t.Fatalf("Email: %v", err)
	}
	if email != "a@b.com" {
		t.Fatalf("unexpected email %q", email)
	}
	if ft.calls() != 2 {
		t.Fatalf("expected login + info, got %d calls", ft.calls())
	}
	if got := ft.request(0).URL; got != testBaseURL+"/account/login/alice/secret?session=" {
		t.Fatalf("unexpected login URL %q", got)
	}
	if got := ft.request(1).URL; got != testBaseURL+"/account/info?session=tok-1" {
		t.Fatalf("unexpected info URL %q", got)
	}

	files, _ := acc.FilesCount(ctx)
	storage, _ := acc.Storage(ctx)
	premium, _ := acc.IsPremium(ctx)
	expires, _ := acc.Expires(ctx)
	codes, _ := acc.Codes(ctx)
	if files != 3 || storage != "10MB" || premium || expires != 1700000000 || codes != 2 {
		t.Fatalf("unexpected profile: files=%d storage=%q premium=%v expires=%d codes=%d", files, storage, premium, expires, codes)
	}
	if ft.calls() != 2 {
		t.Fatalf("cached getters sent requests: %d calls", ft.calls())
	}
}

func TestProfileRoundTripSingleCall(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/info", `{"email":"a@b.com","files":3,"storage":"10MB","premium":0,"codes":2,"error":""}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	email, err := acc.Email(ctx)
	if err != nil {
		t.Fatalf("Email: %v", err)
	}
	premium, err := acc.IsPremium(ctx)
	if err != nil {
		t.Fatalf("IsPremium: %v", err)
	}
	count, err := acc.FilesCount(ctx)
	if err != nil {
		t.Fatalf("FilesCount: %v", err)
	}
	if email != "a@b.com" || premium || count != 3 {
		t.Fatalf("unexpected values: %q %v %d", email, premium, count)
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}
	// expires is absent from the response and resolves to zero.
	if exp, _ := acc.Expires(ctx); exp != 0 || ft.calls() != 1 {
		t.Fatalf("expires=%d calls=%d", exp, ft.calls())
	}
}

func TestProfileSnapshot(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/info", `{"email":"x@y.z","files":"7","storage":"1GB","premium":1,"expires":42,"codes":0,"error":""}`)

	p, err := client.NewAccount("u", "p", bay.WithSession("s")).Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	want := bay.Profile{Email: "x@y.z", FilesCount: 7, Storage: "1GB", Premium: true, Expires: 42}
	if p != want {
		t.Fatalf("unexpected profile %#v", p)
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}
}

func TestInvalidCredentialsStopsDependentRequest(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"session":"","error":"invalid credentials"}`)
	ft.respond("/account/files", `{"error":""}`)

	_, err := client.NewAccount("alice", "wrong").Files(context.Background())
	var accErr *bay.AccountError
	if !errors.As(err, &accErr) {
		t.Fatalf("expected *AccountError, got %v", err)
	}
	if accErr.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", accErr.Message)
	}
	if ft.calls() != 1 {
		t.Fatalf("expected only the login call, got %d", ft.calls())
	}
}

func TestEmptySessionIsNotCachedAsLoggedIn(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"error":""}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret")
	if _, err := acc.Session(ctx); err != nil {
		t.Fatalf("Session: %v", err)
	}
	if _, err := acc.Session(ctx); err != nil {
		t.Fatalf("Session: %v", err)
	}
	if ft.calls() != 2 {
		t.Fatalf("expected a login per call, got %d", ft.calls())
	}
}

func TestFilesSkipsErrorKeyAndKeepsOrder(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/files", `{
		"zz9":{"infoToken":"i1","deleteToken":"d1","size":10,"sha1":"aa","filename":"z.txt"},
		"error":"",
		"aa1":{"infoToken":"i2","deleteToken":"d2","size":20,"sha1":"bb","filename":"a.txt"}
	}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	files, err := acc.Files(ctx)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].FileID() != "zz9" || files[1].FileID() != "aa1" {
		t.Fatalf("unexpected order: %s, %s", files[0].FileID(), files[1].FileID())
	}
	f := files[1]
	if f.InfoToken() != "i2" || f.DeleteToken() != "d2" || f.Owner() != acc {
		t.Fatalf("unexpected file %#v", f)
	}
	size, _ := f.Size(ctx)
	name, _ := f.Name(ctx)
	sum, _ := f.SHA1(ctx)
	if size != 20 || name != "a.txt" || sum != "bb" {
		t.Fatalf("unexpected metadata: %d %q %q", size, name, sum)
	}
	if ft.calls() != 1 {
		t.Fatalf("listed metadata triggered requests: %d calls", ft.calls())
	}
}

func TestFilesCachedAcrossServerChanges(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/files", `{"f1":{"infoToken":"i1"},"error":""}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	first, err := acc.Files(ctx)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	ft.respond("/account/files", `{"f1":{"infoToken":"i1"},"f2":{"infoToken":"i2"},"error":""}`)
	second, err := acc.Files(ctx)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(second) != 1 || &first[0] != &second[0] {
		t.Fatalf("expected the cached collection, got %d files", len(second))
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}
}

func TestEmptyListingIsCached(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/files", `{"error":""}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	for i := 0; i < 3; i++ {
		files, err := acc.Files(ctx)
		if err != nil {
			t.Fatalf("Files: %v", err)
		}
		if len(files) != 0 {
			t.Fatalf("expected no files, got %d", len(files))
		}
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}
}

func TestEditFieldRefreshesProfile(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/edit/", `{"email":"new@b.com","files":1,"storage":"1MB","premium":1,"expires":5,"codes":9,"error":""}`)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	if err := acc.EditEmail(ctx, "new@b.com"); err != nil {
		t.Fatalf("EditEmail: %v", err)
	}
	if got := ft.request(0).URL; got != testBaseURL+"/account/edit/email/new%40b.com?session=tok" {
		t.Fatalf("unexpected edit URL %q", got)
	}
	email, _ := acc.Email(ctx)
	codes, _ := acc.Codes(ctx)
	if email != "new@b.com" || codes != 9 {
		t.Fatalf("profile not refreshed: %q %d", email, codes)
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}

	if err := acc.EditPassword(ctx, "n3w pass"); err != nil {
		t.Fatalf("EditPassword: %v", err)
	}
	if got := ft.request(1).URL; got != testBaseURL+"/account/edit/password/n3w%20pass?session=tok" {
		t.Fatalf("unexpected edit URL %q", got)
	}
	if acc.Password() != "secret" {
		t.Fatalf("local password changed to %q", acc.Password())
	}
}

func TestEditFieldAPIError(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/edit/", `{"error":"invalid key"}`)

	err := client.NewAccount("alice", "secret", bay.WithSession("tok")).EditField(context.Background(), "colour", "red")
	var accErr *bay.AccountError
	if !errors.As(err, &accErr) || accErr.Message != "invalid key" {
		t.Fatalf("expected AccountError(invalid key), got %v", err)
	}
}

func TestLogoutKeepsLocalSession(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/logout", `{"error":""}`)
	ft.respond("/account/info", profileBody)
	ctx := context.Background()

	acc := client.NewAccount("alice", "secret", bay.WithSession("tok"))
	if err := acc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := acc.Email(ctx); err != nil {
		t.Fatalf("Email: %v", err)
	}
	if got := ft.request(1).URL; !strings.HasSuffix(got, "session=tok") {
		t.Fatalf("expected the cached token after logout, got %q", got)
	}
	if ft.calls() != 2 {
		t.Fatalf("expected no login after logout, got %d calls", ft.calls())
	}
}

func TestLoginEscapesCredentials(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"session":"s","error":""}`)

	if err := client.NewAccount("a b@c", "p&w+d/~-_.").Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := testBaseURL + "/account/login/a%20b%40c/p%26w%2Bd%2F~-_.?session="
	if got := ft.request(0).URL; got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}
