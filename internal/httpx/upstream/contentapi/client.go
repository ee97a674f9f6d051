package contentapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/dao"
	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

const (
	defaultBaseURL     = "https://api.contenthub.example"
	defaultEnvironment = "master"
	defaultTimeout     = 30 * time.Second

	// Page size caps enforced by the repository
	maxScanPageSize  = 1000
	maxBatchPageSize = 100
)

// Client is a content repository API client. It issues no retries itself;
// transient-error retry is a caller-side policy (see Retrying).
type Client struct {
	baseURL     string
	spaceID     string
	environment string
	token       string
	httpClient  *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithEnvironment sets the repository environment
func WithEnvironment(env string) ClientOption {
	return func(c *Client) {
		c.environment = env
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new content repository client for a space
func New(spaceID, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		spaceID:     spaceID,
		environment: defaultEnvironment,
		token:       token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error response from the repository API
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content API error: %s (status: %d)", e.Message, e.StatusCode)
}

// IsRateLimited returns true for rate-limit responses
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound returns true for missing-resource responses
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsPermanent returns true for errors that will not resolve on retry:
// client errors other than rate limits and request timeouts.
func (e *APIError) IsPermanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		e.StatusCode != http.StatusTooManyRequests &&
		e.StatusCode != http.StatusRequestTimeout
}

type entryWire struct {
	ID               string     `json:"id"`
	ContentType      string     `json:"content_type"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedBy        string     `json:"created_by,omitempty"`
	UpdatedBy        string     `json:"updated_by,omitempty"`
	PublishedBy      string     `json:"published_by,omitempty"`
}

func (w entryWire) toEntity() entity.Entry {
	return entity.Entry{
		ID:               w.ID,
		ContentTypeID:    w.ContentType,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
		FirstPublishedAt: w.FirstPublishedAt,
		PublishedAt:      w.PublishedAt,
		CreatedByID:      w.CreatedBy,
		UpdatedByID:      w.UpdatedBy,
		PublishedByID:    w.PublishedBy,
	}
}

type entriesResponse struct {
	Items []entryWire `json:"items"`
	Total int         `json:"total"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
}

// FetchEntries retrieves one page of entries matching the filter. The cursor
// is an opaque offset token; an empty cursor starts the scan. The returned
// NextCursor is empty once the scan is exhausted: a full-length page alone is
// never taken as proof that more pages exist.
func (c *Client) FetchEntries(ctx context.Context, filter dao.EntryFilter, cursor string) (*dao.EntryPage, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxScanPageSize {
		limit = maxScanPageSize
	}
	if len(filter.IDs) > 0 && limit > maxBatchPageSize {
		limit = maxBatchPageSize
	}

	skip := 0
	if cursor != "" {
		s, err := strconv.Atoi(cursor)
		if err != nil || s < 0 {
			return nil, fmt.Errorf("invalid entries cursor %q", cursor)
		}
		skip = s
	}

	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))
	if filter.ContentTypeID != "" {
		params.Set("content_type", filter.ContentTypeID)
	}
	if len(filter.IDs) > 0 {
		params.Set("id[in]", strings.Join(filter.IDs, ","))
	}
	if filter.OnlyPublished {
		params.Set("published", "true")
	}
	if filter.PublishedFrom != nil {
		params.Set("published_at[gte]", filter.PublishedFrom.Format(time.RFC3339))
	}
	if filter.UpdatedBefore != nil {
		params.Set("updated_at[lte]", filter.UpdatedBefore.Format(time.RFC3339))
	}
	if filter.CreatedFrom != nil {
		params.Set("created_at[gte]", filter.CreatedFrom.Format(time.RFC3339))
	}
	if filter.Order != "" {
		params.Set("order", filter.Order)
	}

	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/entries", c.baseURL, c.spaceID, c.environment)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out entriesResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	entries := make([]entity.Entry, len(out.Items))
	for i, item := range out.Items {
		entries[i] = item.toEntity()
	}

	// A next cursor exists only if the page was full AND the reported total
	// says more remain. A short page always ends the scan.
	next := ""
	if len(out.Items) == limit && skip+len(out.Items) < out.Total {
		next = strconv.Itoa(skip + len(out.Items))
	}

	return &dao.EntryPage{Entries: entries, NextCursor: next}, nil
}

type scheduledActionWire struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	Action       string    `json:"action"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Timezone     string    `json:"timezone,omitempty"`
	TargetType   string    `json:"target_type"`
	TargetID     string    `json:"target_id"`
}

type scheduledActionsResponse struct {
	Items []scheduledActionWire `json:"items"`
}

// FetchScheduledActions retrieves all pending scheduled actions for the space
func (c *Client) FetchScheduledActions(ctx context.Context) ([]entity.ScheduledAction, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/scheduled_actions", c.baseURL, c.spaceID, c.environment)

	params := url.Values{}
	params.Set("status", string(entity.ActionStatusScheduled))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out scheduledActionsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	actions := make([]entity.ScheduledAction, len(out.Items))
	for i, item := range out.Items {
		kind := entity.TargetKindEntry
		if item.TargetType == "Release" {
			kind = entity.TargetKindRelease
		}
		actions[i] = entity.ScheduledAction{
			ID:           item.ID,
			Status:       entity.ActionStatus(item.Status),
			Action:       entity.ActionKind(item.Action),
			ScheduledFor: item.ScheduledFor,
			Timezone:     item.Timezone,
			TargetKind:   kind,
			TargetID:     item.TargetID,
		}
	}

	return actions, nil
}

type releaseWire struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	EntryIDs  []string  `json:"entry_ids"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// FetchRelease retrieves a release bundle by ID
func (c *Client) FetchRelease(ctx context.Context, id string) (*entity.Release, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s/releases/%s", c.baseURL, c.spaceID, c.environment, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out releaseWire
	if err := c.do(req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, fmt.Errorf("%w: %s", entity.ErrReleaseNotFound, id)
		}
		return nil, err
	}

	return &entity.Release{
		ID:          out.ID,
		Title:       out.Title,
		EntryIDs:    out.EntryIDs,
		UpdatedAt:   out.UpdatedAt,
		UpdatedByID: out.UpdatedBy,
	}, nil
}

type userWire struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type usersResponse struct {
	Items []userWire `json:"items"`
}

// GetUser retrieves a single user from the space directory
func (c *Client) GetUser(ctx context.Context, id string) (*entity.User, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/users/%s", c.baseURL, c.spaceID, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out userWire
	if err := c.do(req, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, fmt.Errorf("%w: %s", entity.ErrUserNotFound, id)
		}
		return nil, err
	}

	return &entity.User{
		ID:        out.ID,
		FirstName: out.FirstName,
		LastName:  out.LastName,
		Email:     out.Email,
	}, nil
}

// ListUsers retrieves all users in the space directory
func (c *Client) ListUsers(ctx context.Context) ([]entity.User, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/users", c.baseURL, c.spaceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out usersResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	users := make([]entity.User, len(out.Items))
	for i, item := range out.Items {
		users[i] = entity.User{
			ID:        item.ID,
			FirstName: item.FirstName,
			LastName:  item.LastName,
			Email:     item.Email,
		}
	}

	return users, nil
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	// Check for error response
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
