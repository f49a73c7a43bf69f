package crunchyroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/malcr/malcr/log"
)

// TokenSource hands out bearer tokens.
type TokenSource interface {
	// AccessToken returns the current token, logging in when there is none.
	AccessToken(ctx context.Context) (string, error)
	// Refresh replaces the current token with a fresh one.
	Refresh(ctx context.Context) (string, error)
}

type token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Country      string `json:"country"`
	AccountID    string `json:"account_id"`
}

// Session is the login state of one account. It is safe for concurrent use.
type Session struct {
	http         *http.Client
	clientID     string
	clientSecret string
	email        string
	password     string
	deviceID     string
	store        SessionStore

	// Endpoint is the site root, without trailing slash.
	Endpoint string

	mu    sync.Mutex
	token token
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClientCredentials overrides the web player client.
func WithClientCredentials(id, secret string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.clientID = id
		}
		s.clientSecret = secret
	}
}

// WithStore keeps the refresh token between runs.
func WithStore(store SessionStore) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// WithEndpoint points the session at another host.
func WithEndpoint(endpoint string) SessionOption {
	return func(s *Session) {
		s.Endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// NewSession returns a session for the given credentials. Nothing is sent until Login.
func NewSession(httpClient *http.Client, email, password string, opts ...SessionOption) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	s := &Session{
		http:     httpClient,
		clientID: PublicClientID,
		email:    email,
		password: password,
		deviceID: uuid.New().String(),
		Endpoint: baseURL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login obtains the first token. A stored refresh token is tried before the password.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) error {
	if s.store != nil {
		if stored, err := s.store.Load(); err == nil && stored != "" {
			if err := s.grant(ctx, refreshForm(stored, s.deviceID)); err == nil {
				log.Info("Resumed the stored Crunchyroll session")
				return nil
			}
			log.Warn("Stored Crunchyroll session was refused, logging in again")
		}
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", s.email)
	form.Set("password", s.password)
	form.Set("scope", "offline_access")
	form.Set("device_id", s.deviceID)
	form.Set("device_type", "malcr")

	if err := s.grant(ctx, form); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	return nil
}

// AccessToken implements TokenSource.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.AccessToken == "" {
		if err := s.login(ctx); err != nil {
			return "", err
		}
	}

	return s.token.AccessToken, nil
}

// Refresh implements TokenSource. It falls back to the password when the
// refresh token is gone or refused.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.RefreshToken != "" {
		err := s.grant(ctx, refreshForm(s.token.RefreshToken, s.deviceID))
		if err == nil {
			log.Debug("Crunchyroll token refreshed")
			return s.token.AccessToken, nil
		}
		log.Warnf("Crunchyroll token refresh failed: %v", err)
	}

	s.token = token{}
	if err := s.login(ctx); err != nil {
		return "", err
	}

	return s.token.AccessToken, nil
}

// Account returns the account UUID the marks are recorded on.
func (s *Session) Account(ctx context.Context) (string, error) {
	bearer, err := s.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	account := s.token.AccountID
	s.mu.Unlock()
	if account != "" {
		return account, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"/accounts/v1/me", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("account request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var me struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("account decode: %w", err)
	}
	if me.AccountID == "" {
		return "", errors.New("crunchyroll: account id missing from /accounts/v1/me")
	}

	s.mu.Lock()
	s.token.AccountID = me.AccountID
	s.mu.Unlock()

	return me.AccountID, nil
}

// grant posts form to the token endpoint and stores the result. Callers hold mu.
func (s *Session) grant(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint+"/auth/v1/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(string(body)))
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	var fresh token
	if err := json.NewDecoder(resp.Body).Decode(&fresh); err != nil {
		return fmt.Errorf("token decode: %w", err)
	}
	if fresh.AccessToken == "" {
		return errors.New("crunchyroll: empty access token")
	}

	if fresh.AccountID == "" {
		fresh.AccountID = s.token.AccountID
	}
	s.token = fresh

	if s.store != nil && fresh.RefreshToken != "" {
		if err := s.store.Save(fresh.RefreshToken); err != nil {
			log.Warnf("Could not store the Crunchyroll session: %v", err)
		}
	}

	return nil
}

func refreshForm(refreshToken, deviceID string) url.Values {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("scope", "offline_access")
	form.Set("device_id", deviceID)
	form.Set("device_type", "malcr")
	return form
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Method: resp.Request.Method,
		URL:    resp.Request.URL.Redacted(),
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
