package bay

import "context"

// SessionProvider supplies the session token appended to a request.
// *Account implements it by logging in when no token is cached.
type SessionProvider interface {
	Session(ctx context.Context) (string, error)
}

// Session is a literal session token. The empty Session sends "session=".
type Session string

// Session returns s unchanged.
func (s Session) Session(context.Context) (string, error) {
	return string(s), nil
}

// sessionOf converts an optional owner into a provider, keeping a nil
// *Account from turning into a non-nil interface.
func sessionOf(a *Account) SessionProvider {
	if a == nil {
		return nil
	}
	return a
}
