package bay_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bayfiles/bay_sdk_go/pkg/bay"
)

func TestRequestIsSingleUse(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/info", profileBody)
	ctx := context.Background()

	req, err := client.NewRequest(ctx, "/account/info", bay.Session("tok"))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if req.URL() != testBaseURL+"/account/info?session=tok" {
		t.Fatalf("unexpected URL %q", req.URL())
	}
	if _, err := req.Send(ctx, bay.AccountErrorKind); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(req.Field("email")) != `"a@b.com"` {
		t.Fatalf("unexpected email field %s", req.Field("email"))
	}
	if req.Field("missing") != nil {
		t.Fatalf("expected nil for a missing field")
	}
	if _, err := req.Send(ctx, bay.AccountErrorKind); !errors.Is(err, bay.ErrRequestUsed) {
		t.Fatalf("expected ErrRequestUsed, got %v", err)
	}
	if ft.calls() != 1 {
		t.Fatalf("expected 1 call, got %d", ft.calls())
	}
}

func TestRequestRejectsUnsupportedMethod(t *testing.T) {
	client, ft := newFakeClient(t)
	ctx := context.Background()

	req, err := client.NewRequest(ctx, "/account/info", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.SetMethod("delete")
	if _, err := req.Send(ctx, bay.AccountErrorKind); !errors.Is(err, bay.ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}
	if ft.calls() != 0 {
		t.Fatalf("expected no calls, got %d", ft.calls())
	}
}

func TestRequestAttachmentsOnlyForPost(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/x", `{"error":""}`)
	ctx := context.Background()

	get, _ := client.NewRequest(ctx, "/x", nil)
	get.AttachFile("file", "a.txt")
	if _, err := get.Send(ctx, bay.FileErrorKind); err != nil {
		t.Fatalf("Send GET: %v", err)
	}

	post, _ := client.NewRequest(ctx, "/x", nil)
	post.SetMethod(http.MethodPost)
	post.AttachFile("file", "a.txt")
	post.AttachFile("file", "b.txt")
	if _, err := post.Send(ctx, bay.FileErrorKind); err != nil {
		t.Fatalf("Send POST: %v", err)
	}

	if n := len(ft.request(0).Attachments); n != 0 {
		t.Fatalf("GET carried %d attachments", n)
	}
	want := []bay.Attachment{{Field: "file", Path: "b.txt"}}
	got := ft.request(1).Attachments
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected POST attachments %#v", got)
	}
}

func TestRequestErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		kind bay.ErrorKind
		want func(t *testing.T, msg string, err error)
	}{
		{
			name: "none returns message",
			kind: bay.NoErrorKind,
			want: func(t *testing.T, msg string, err error) {
				if err != nil || msg != "boom" {
					t.Fatalf("got (%q, %v)", msg, err)
				}
			},
		},
		{
			name: "account",
			kind: bay.AccountErrorKind,
			want: func(t *testing.T, msg string, err error) {
				var accErr *bay.AccountError
				if !errors.As(err, &accErr) || accErr.Message != "boom" {
					t.Fatalf("got (%q, %v)", msg, err)
				}
				if err.Error() != "bay: account: boom" {
					t.Fatalf("unexpected Error() %q", err.Error())
				}
			},
		},
		{
			name: "file",
			kind: bay.FileErrorKind,
			want: func(t *testing.T, msg string, err error) {
				var fileErr *bay.FileError
				if !errors.As(err, &fileErr) || fileErr.Message != "boom" {
					t.Fatalf("got (%q, %v)", msg, err)
				}
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			client, ft := newFakeClient(t)
			ft.respond("/x", `{"error":"boom"}`)
			ctx := context.Background()
			req, err := client.NewRequest(ctx, "/x", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			msg, err := req.Send(ctx, tc.kind)
			tc.want(t, msg, err)
		})
	}
}

func TestRequestNonStringErrorIsSuccess(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/x", `{"error":false,"value":1}`)
	ctx := context.Background()

	req, _ := client.NewRequest(ctx, "/x", nil)
	msg, err := req.Send(ctx, bay.AccountErrorKind)
	if err != nil || msg != "" {
		t.Fatalf("got (%q, %v)", msg, err)
	}
}

func TestRequestTransportAndDecodeErrors(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.fail("/down", errFakeNetwork)
	ft.respond("/garbage", "<html>oops</html>")
	ctx := context.Background()

	req, _ := client.NewRequest(ctx, "/down", nil)
	_, err := req.Send(ctx, bay.AccountErrorKind)
	if !errors.Is(err, errFakeNetwork) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	var accErr *bay.AccountError
	if errors.As(err, &accErr) {
		t.Fatalf("transport failure reported as API error")
	}

	req, _ = client.NewRequest(ctx, "/garbage", nil)
	if _, err := req.Send(ctx, bay.AccountErrorKind); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestRequestSessionSources(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"session":"fresh","error":""}`)
	ctx := context.Background()

	cases := []struct {
		name   string
		source bay.SessionProvider
		want   string
	}{
		{name: "nil", source: nil, want: "session="},
		{name: "literal", source: bay.Session("lit"), want: "session=lit"},
		{name: "empty literal", source: bay.Session(""), want: "session="},
		{name: "account", source: client.NewAccount("u", "p"), want: "session=fresh"},
	}
	for _, tc := range cases {
		req, err := client.NewRequest(ctx, "/x", tc.source)
		if err != nil {
			t.Fatalf("%s: NewRequest: %v", tc.name, err)
		}
		if !strings.HasSuffix(req.URL(), "?"+tc.want) {
			t.Fatalf("%s: unexpected URL %q", tc.name, req.URL())
		}
	}
}

func TestRequestSessionLoginFailure(t *testing.T) {
	client, ft := newFakeClient(t)
	ft.respond("/account/login/", `{"session":"","error":"invalid credentials"}`)

	_, err := client.NewRequest(context.Background(), "/account/info", client.NewAccount("u", "p"))
	var accErr *bay.AccountError
	if !errors.As(err, &accErr) {
		t.Fatalf("expected *AccountError, got %v", err)
	}
}

func TestRequestMetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	core, logs := observer.New(zapcore.DebugLevel)
	client, ft := newFakeClient(t, bay.WithMetrics(reg), bay.WithLogger(zap.New(core)))
	ft.respond("/account/login/", `{"session":"","error":"invalid credentials"}`)
	ft.respond("/account/info", profileBody)
	ctx := context.Background()

	_ = client.NewAccount("alice", "hunter2").Login(ctx)
	if _, err := client.NewAccount("alice", "hunter2", bay.WithSession("tok-secret")).Email(ctx); err != nil {
		t.Fatalf("Email: %v", err)
	}

	expected := `
# HELP bayfiles_client_requests_total Total number of Bayfiles API requests
# TYPE bayfiles_client_requests_total counter
bayfiles_client_requests_total{op="account/info",outcome="ok"} 1
bayfiles_client_requests_total{op="account/login",outcome="api_error"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "bayfiles_client_requests_total"); err != nil {
		t.Fatalf("metrics mismatch: %v", err)
	}

	entries := logs.FilterMessage("bay request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	for _, e := range entries {
		dump := fmt.Sprint(e.ContextMap())
		if strings.Contains(dump, "hunter2") || strings.Contains(dump, "tok-secret") {
			t.Fatalf("credentials leaked into logs: %s", dump)
		}
	}
	if op := entries[0].ContextMap()["op"]; op != "account/login" {
		t.Fatalf("unexpected op %v", op)
	}
}

func TestNewWithTransportValidation(t *testing.T) {
	if _, err := bay.NewWithTransport(testBaseURL, nil); err == nil {
		t.Fatalf("expected error for nil transport")
	}
	if _, err := bay.NewWithTransport(" ", newFakeTransport()); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
	client, err := bay.NewWithTransport(testBaseURL+"/", newFakeTransport())
	if err != nil {
		t.Fatalf("NewWithTransport: %v", err)
	}
	if client.BaseURL() != testBaseURL {
		t.Fatalf("unexpected base URL %q", client.BaseURL())
	}
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	if _, err := bay.New("/v1"); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
}
