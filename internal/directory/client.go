//go:generate mockgen -source=./client.go -destination=../mocks/mock_directory.go -package=mocks DirectoryIface

// Package directory is a read-only client for the organization directory,
// the OAuth server that owns organizations and their users.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"golang.org/x/oauth2"
)

// DirectoryIface is the subset of the directory the services depend on.
type DirectoryIface interface {
	Organizations(ctx context.Context, accessToken string, except *int64) ([]model.Organization, error)
	Users(ctx context.Context, accessToken string, orgID int64) ([]model.User, error)
	PublishableUsers(ctx context.Context, accessToken string, orgID int64) ([]model.User, error)
	Exists(ctx context.Context, accessToken string, ids []int64) (bool, error)
	FindByID(ctx context.Context, accessToken string, id int64) (OrganizationLookup, error)
	DeletedOrganizations(ctx context.Context) ([]int64, error)
}

var _ DirectoryIface = (*Client)(nil)

// Config represents the configuration for the directory client
type Config struct {
	// BaseURL is the base URL of the directory service
	BaseURL string
	// HTTPClient is an optional custom HTTP client
	HTTPClient *http.Client
	// Timeout bounds each request. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "http://localhost:3000",
		HTTPClient: http.DefaultClient,
		Timeout:    10 * time.Second,
	}
}

// Client is the directory service client
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a new directory client with the given configuration
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		config: config,
		client: client,
		logger: slog.Default(),
	}
}

// AbsentReason says why a lookup returned no organization.
type AbsentReason string

const (
	AbsentNone         AbsentReason = ""
	AbsentUnauthorized AbsentReason = "unauthorized"
	AbsentNotFound     AbsentReason = "not_found"
)

// OrganizationLookup is the result of FindByID. Exactly one of Organization
// and Absent is set.
type OrganizationLookup struct {
	Organization *model.Organization
	Absent       AbsentReason
}

func (l OrganizationLookup) Found() bool {
	return l.Organization != nil
}

// Organizations lists the organizations visible to the token, leaving out
// except when it is set. Without a token there is nothing to list.
func (c *Client) Organizations(ctx context.Context, accessToken string, except *int64) ([]model.Organization, error) {
	if accessToken == "" {
		return nil, nil
	}

	var orgs []model.Organization
	if err := c.get(ctx, c.authorized(ctx, accessToken), c.endpoint("/api/organizations", nil), &orgs); err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}

	if except != nil {
		orgs = model.ExcludeOrganization(orgs, *except)
	}
	return orgs, nil
}

// Users lists the users of an organization. An unset organization has none.
func (c *Client) Users(ctx context.Context, accessToken string, orgID int64) ([]model.User, error) {
	if orgID == 0 {
		return []model.User{}, nil
	}

	var users []model.User
	endpoint := c.endpoint(fmt.Sprintf("/api/organizations/%d/users", orgID), nil)
	if err := c.get(ctx, c.authorized(ctx, accessToken), endpoint, &users); err != nil {
		return nil, fmt.Errorf("listing organization users: %w", err)
	}
	return users, nil
}

// PublishableUsers returns the users of an organization that surveys can be
// published to.
func (c *Client) PublishableUsers(ctx context.Context, accessToken string, orgID int64) ([]model.User, error) {
	users, err := c.Users(ctx, accessToken, orgID)
	if err != nil {
		return nil, err
	}

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.Publishable() {
			out = append(out, u)
		}
	}
	return out, nil
}

// Exists asks the directory whether every id names a known organization.
func (c *Client) Exists(ctx context.Context, accessToken string, ids []int64) (bool, error) {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return false, fmt.Errorf("failed to marshal organization ids: %w", err)
	}

	var ok bool
	endpoint := c.endpoint("/api/organizations/validate_orgs", url.Values{"org_ids": {string(encoded)}})
	if err := c.get(ctx, c.authorized(ctx, accessToken), endpoint, &ok); err != nil {
		return false, fmt.Errorf("validating organizations: %w", err)
	}
	return ok, nil
}

// FindByID fetches one organization. Authorization failures and missing
// organizations come back as an absent result, not an error.
func (c *Client) FindByID(ctx context.Context, accessToken string, id int64) (OrganizationLookup, error) {
	var org model.Organization
	endpoint := c.endpoint(fmt.Sprintf("/api/organizations/%d", id), nil)
	err := c.get(ctx, c.authorized(ctx, accessToken), endpoint, &org)
	if err == nil {
		return OrganizationLookup{Organization: &org}, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.logger.DebugContext(ctx, "organization lookup not authorized", "org_id", id, "status", apiErr.StatusCode)
			return OrganizationLookup{Absent: AbsentUnauthorized}, nil
		case http.StatusNotFound:
			return OrganizationLookup{Absent: AbsentNotFound}, nil
		}
	}
	return OrganizationLookup{}, fmt.Errorf("finding organization %d: %w", id, err)
}

// DeletedOrganizations returns the ids of organizations removed upstream.
// The endpoint is unauthenticated.
func (c *Client) DeletedOrganizations(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := c.get(ctx, c.client, c.endpoint("/api/deleted_organizations", nil), &ids); err != nil {
		return nil, fmt.Errorf("listing deleted organizations: %w", err)
	}
	return ids, nil
}

// authorized returns an HTTP client that sends the access token as a bearer
// token on top of the configured client.
func (c *Client) authorized(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// APIError defines an error response from the directory
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (Status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (Status: %d)", e.Message, e.StatusCode)
}

// get performs a GET request to the specified endpoint and unmarshals the response into the specified response object
func (c *Client) get(ctx context.Context, client *http.Client, endpoint string, resp interface{}) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr APIError
		if err := json.NewDecoder(httpResp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return &APIError{
				StatusCode: httpResp.StatusCode,
				Message:    fmt.Sprintf("request failed with status code %d", httpResp.StatusCode),
			}
		}

		apiErr.StatusCode = httpResp.StatusCode
		return &apiErr
	}

	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
