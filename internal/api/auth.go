package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
)

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body of POST /auth/signup.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the signed-in user's editable profile.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Credentials is what a successful sign-in yields.
type Credentials struct {
	Token string `json:"token"`
	Name  string `json:"name,omitempty"`
}

// SignIn posts the user's credentials. On success the envelope payload holds
// the token; use [DecodeCredentials] to extract it.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*Envelope, error) {
	return c.Post(ctx, "/auth/signin", req)
}

// SignUp registers a new user. The API emails a verification link.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*Envelope, error) {
	return c.Post(ctx, "/auth/signup", req)
}

// VerifyEmail forwards the token from a verification link.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*Envelope, error) {
	return c.Get(ctx, "/auth/verify-email", url.Values{"token": {token}})
}

// Profile fetches the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*Envelope, error) {
	if c.token() == "" {
		return nil, ErrNoToken
	}
	return c.Get(ctx, "/auth/profile", nil)
}

// UpdateProfile replaces the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) (*Envelope, error) {
	if c.token() == "" {
		return nil, ErrNoToken
	}
	return c.Put(ctx, "/auth/profile", p)
}

// Name fetches the signed-in user's display name.
func (c *Client) Name(ctx context.Context) (*Envelope, error) {
	if c.token() == "" {
		return nil, ErrNoToken
	}
	return c.Get(ctx, "/auth/name", nil)
}

// DecodeCredentials extracts the token from a sign-in envelope. The API
// returns either {"token": "..."} or the bare token string as payload.
func DecodeCredentials(env *Envelope) (Credentials, error) {
	var creds Credentials
	if env == nil || len(env.Payload) == 0 {
		return creds, errors.New("api: sign-in response has no payload")
	}
	if env.Payload[0] == '"' {
		if err := json.Unmarshal(env.Payload, &creds.Token); err != nil {
			return creds, err
		}
	} else if err := env.Decode(&creds); err != nil {
		return creds, err
	}
	if creds.Token == "" {
		return creds, errors.New("api: sign-in response has no token")
	}
	return creds, nil
}
