// Package devseed loads seed data for the in-memory Bayfiles API used by the
// sandbox and the mock runtime mode. Seeds are YAML (or JSON) documents:
//
//	accounts:
//	  - username: demo
//	    password: secret
//	    email: demo@example.com
//	    premium: true
//	    files:
//	      - name: hello.txt
//	        content: hello world
package devseed

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is the root of a seed document.
type Seed struct {
	Accounts []AccountSeed `yaml:"accounts"`
	// Anonymous files have no owner and never show up in a listing.
	Files []FileSeed `yaml:"files"`
}

// AccountSeed describes one account and the files it owns.
type AccountSeed struct {
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	Email    string     `yaml:"email"`
	Storage  string     `yaml:"storage"`
	Premium  bool       `yaml:"premium"`
	Expires  int64      `yaml:"expires"`
	Codes    int64      `yaml:"codes"`
	Files    []FileSeed `yaml:"files"`
}

// FileSeed describes one stored file. Content is plain text; Base64 takes
// precedence when set. Empty ids and tokens are generated.
type FileSeed struct {
	ID          string `yaml:"id"`
	InfoToken   string `yaml:"info_token"`
	DeleteToken string `yaml:"delete_token"`
	Name        string `yaml:"name"`
	Content     string `yaml:"content"`
	Base64      string `yaml:"base64"`
}

// Data returns the decoded file contents.
func (f FileSeed) Data() ([]byte, error) {
	if f.Base64 != "" {
		data, err := base64.StdEncoding.DecodeString(f.Base64)
		if err != nil {
			return nil, fmt.Errorf("devseed: file %q: decode base64: %w", f.Name, err)
		}
		return data, nil
	}
	return []byte(f.Content), nil
}

// Load reads and validates a seed file.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("devseed: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields and duplicate usernames.
func (s *Seed) Validate() error {
	seen := make(map[string]struct{}, len(s.Accounts))
	for i, a := range s.Accounts {
		if strings.TrimSpace(a.Username) == "" {
			return fmt.Errorf("devseed: account %d: username is required", i)
		}
		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("devseed: duplicate account %q", a.Username)
		}
		seen[a.Username] = struct{}{}
		for j, f := range a.Files {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("devseed: account %q file %d: name is required", a.Username, j)
			}
		}
	}
	for j, f := range s.Files {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("devseed: file %d: name is required", j)
		}
	}
	return nil
}
