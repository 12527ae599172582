// Package gateway implements ports.AuthGateway against the remote
// authentication service or the local account directory.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/almacen/admin-console/internal/core/domain"
)

const (
	signInPath     = "/auth/signin"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var (
	ErrRejected       = errors.New("authentication service rejected the credentials")
	ErrMalformedReply = errors.New("authentication service returned an unreadable payload")
)

// RemoteConfig captures the settings for the remote authentication service.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RemoteGateway calls POST {BaseURL}/auth/signin.
type RemoteGateway struct {
	client  *http.Client
	baseURL string
}

// NewRemoteGateway builds a gateway with its own http.Client. A default
// timeout is applied when none is provided.
func NewRemoteGateway(cfg RemoteConfig) *RemoteGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RemoteGateway{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignIn posts the credentials and decodes the user record from the reply.
func (g *RemoteGateway) SignIn(ctx context.Context, username, password string) (*domain.UserRecord, error) {
	body, err := json.Marshal(signInRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+signInPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read sign-in reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	return decodeUserRecord(raw)
}

// decodeUserRecord reads a sign-in reply. The payload may be wrapped in a
// {"error": bool, "data": {...}} envelope; the person may sit under
// user.person or at the payload root.
func decodeUserRecord(raw []byte) (*domain.UserRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedReply
	}

	root := gjson.ParseBytes(raw)
	if root.Get("error").Bool() {
		return nil, ErrRejected
	}

	payload := root
	if data := root.Get("data"); data.IsObject() {
		payload = data
	}

	person := payload.Get("user.person")
	if !person.Exists() {
		person = payload.Get("person")
	}

	rec := &domain.UserRecord{
		Person: domain.Person{
			Name:     person.Get("name").String(),
			Surname:  person.Get("surname").String(),
			Lastname: person.Get("lastname").String(),
		},
	}

	roles := payload.Get("roles")
	if !roles.IsArray() {
		return nil, ErrMalformedReply
	}
	roles.ForEach(func(_, r gjson.Result) bool {
		rec.Roles = append(rec.Roles, domain.Role{Name: r.Get("name").String()})
		return true
	})

	return rec, nil
}
