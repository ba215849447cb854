package streamchat

// TokenSource supplies the bearer token for a connection attempt.
// ok == false (or an empty token) means connect unauthenticated.
type TokenSource interface {
	Token() (token string, ok bool)
}

// StaticToken is a fixed token.
type StaticToken string

func (t StaticToken) Token() (string, bool) { return string(t), t != "" }

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) { return f() }

func tokenFrom(ts TokenSource) string {
	if ts == nil {
		return ""
	}
	token, ok := ts.Token()
	if !ok {
		return ""
	}
	return token
}
