package devseed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `
accounts:
  - username: demo
    password: secret
    email: demo@example.com
    premium: true
    codes: 2
    files:
      - name: hello.txt
        content: hello world
      - name: blob.bin
        base64: AAEC
files:
  - name: anon.txt
    content: anonymous
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Accounts) != 1 || s.Accounts[0].Username != "demo" || !s.Accounts[0].Premium {
		t.Fatalf("unexpected accounts: %#v", s.Accounts)
	}
	if got := len(s.Accounts[0].Files); got != 2 {
		t.Fatalf("expected 2 files, got %d", got)
	}
	data, err := s.Accounts[0].Files[1].Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if string(data) != "\x00\x01\x02" {
		t.Fatalf("unexpected base64 data %q", data)
	}
	if len(s.Files) != 1 || s.Files[0].Name != "anon.txt" {
		t.Fatalf("unexpected anonymous files: %#v", s.Files)
	}
}

func TestParseJSON(t *testing.T) {
	s, err := Parse([]byte(`{"accounts":[{"username":"a","password":"b","files":[{"name":"x","content":"y"}]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Accounts[0].Files[0].Name != "x" {
		t.Fatalf("unexpected seed %#v", s)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing username", doc: "accounts:\n  - password: x\n"},
		{name: "duplicate username", doc: "accounts:\n  - username: a\n  - username: a\n"},
		{name: "unnamed file", doc: "accounts:\n  - username: a\n    files:\n      - content: x\n"},
		{name: "unnamed anonymous file", doc: "files:\n  - content: x\n"},
		{name: "bad yaml", doc: "accounts: [\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
