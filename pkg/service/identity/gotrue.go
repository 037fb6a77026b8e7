package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/utils/logging"
	"github.com/gasyway/gasyway/pkg/utils/safe"
)

const (
	// DefaultPerPage is the page size requested from the admin users endpoint
	DefaultPerPage = 200
	// DefaultTimeout bounds a single admin API call
	DefaultTimeout = 30 * time.Second

	adminUsersPath = "/auth/v1/admin/users"
)

// GoTrue reads and patches accounts through the GoTrue admin REST API, authenticated
// with the service role key
type GoTrue struct {
	baseURL    string
	serviceKey string
	perPage    int
	httpClient *http.Client
}

var _ interfaces.IdentityDirectory = &GoTrue{}

type Option func(*GoTrue)

// WithPerPage overrides the page size used by ListIdentities
func WithPerPage(n int) Option {
	return func(g *GoTrue) {
		if n > 0 {
			g.perPage = n
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(g *GoTrue) {
		g.httpClient = client
	}
}

// NewGoTrue creates an admin client for the project at baseURL (e.g. https://xyz.supabase.co)
func NewGoTrue(baseURL, serviceKey string, opts ...Option) (*GoTrue, error) {
	if baseURL == "" {
		return nil, goerr.New("identity provider URL is required")
	}
	if serviceKey == "" {
		return nil, goerr.New("identity provider service key is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid identity provider URL", goerr.V("url", baseURL))
	}

	g := &GoTrue{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		perPage:    DefaultPerPage,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// adminUser is the GoTrue admin API representation of an account
type adminUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	LastSignInAt *time.Time     `json:"last_sign_in_at"`
}

func (u *adminUser) toIdentity() *model.Identity {
	return &model.Identity{
		ID:           model.UserID(u.ID),
		Email:        u.Email,
		Metadata:     u.UserMetadata,
		CreatedAt:    u.CreatedAt,
		LastSignInAt: u.LastSignInAt,
	}
}

type listUsersResponse struct {
	Users []adminUser `json:"users"`
}

func (g *GoTrue) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}

	req.Header.Set("apikey", g.serviceKey)
	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON response into out. A 404 is reported as
// interfaces.ErrNotFound.
func (g *GoTrue) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call identity provider", goerr.V("path", req.URL.Path))
	}
	defer safe.Drain(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read identity provider response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return goerr.Wrap(interfaces.ErrNotFound, "identity not found", goerr.V("path", req.URL.Path))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("identity provider returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("path", req.URL.Path),
			goerr.V("body", string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(err, "failed to parse identity provider response", goerr.V("path", req.URL.Path))
	}
	return nil
}

// ListIdentities walks every page of the admin users endpoint
func (g *GoTrue) ListIdentities(ctx context.Context) ([]*model.Identity, error) {
	var identities []*model.Identity

	for page := 1; ; page++ {
		path := fmt.Sprintf("%s?page=%d&per_page=%d", adminUsersPath, page, g.perPage)
		req, err := g.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var resp listUsersResponse
		if err := g.do(ctx, req, &resp); err != nil {
			return nil, goerr.Wrap(err, "failed to list identities", goerr.V("page", page))
		}

		for i := range resp.Users {
			identities = append(identities, resp.Users[i].toIdentity())
		}

		if len(resp.Users) < g.perPage {
			break
		}
	}

	logging.From(ctx).Debug("listed identities", "count", len(identities))
	return identities, nil
}

func (g *GoTrue) GetIdentity(ctx context.Context, id model.UserID) (*model.Identity, error) {
	req, err := g.newRequest(ctx, http.MethodGet, adminUsersPath+"/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return nil, err
	}

	var user adminUser
	if err := g.do(ctx, req, &user); err != nil {
		return nil, goerr.Wrap(err, "failed to get identity", goerr.V("user_id", id))
	}
	return user.toIdentity(), nil
}

// UpdateIdentityMetadata sends patch as user_metadata; GoTrue merges it into the stored
// metadata
func (g *GoTrue) UpdateIdentityMetadata(ctx context.Context, id model.UserID, patch map[string]any) error {
	body := map[string]any{"user_metadata": patch}
	req, err := g.newRequest(ctx, http.MethodPut, adminUsersPath+"/"+url.PathEscape(string(id)), body)
	if err != nil {
		return err
	}

	if err := g.do(ctx, req, nil); err != nil {
		return goerr.Wrap(err, "failed to update identity metadata", goerr.V("user_id", id))
	}
	return nil
}
