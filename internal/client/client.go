// AngelaMos | 2026
// client.go

package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

// Client talks to the LMS data server. It holds the session token returned
// by Login or Register and sends it as a bearer token on every request.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
	user  *User

	Auth        *AuthService
	Courses     *CourseService
	Users       *UserService
	Enrollments *EnrollmentService
	Admin       *AdminService
}

type Option func(*Client)

// WithToken restores a session saved from an earlier Login.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if token := c.Token(); token != "" {
			r.SetAuthToken(token)
		}
		return nil
	})

	c.Auth = &AuthService{client: c}
	c.Courses = &CourseService{client: c}
	c.Users = &UserService{client: c}
	c.Enrollments = &EnrollmentService{client: c}
	c.Admin = &AdminService{client: c}

	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser is the user from the last Login or Register, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) IsAuthenticated() bool {
	return c.Token() != ""
}

func (c *Client) setSession(token string, user *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.user = user
}

// do sends one request. A non-2xx answer becomes an *APIError carrying the
// server's message.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})

	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return resp, newAPIError(resp)
	}

	return resp, nil
}

// ListOptions are the json-server style list parameters. Page 0 returns
// every record.
type ListOptions struct {
	Query string
	Page  int
	Limit int
	Sort  string
	Order string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Page > 0 {
		v.Set("_page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("_limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		v.Set("_sort", o.Sort)
	}
	if o.Order != "" {
		v.Set("_order", o.Order)
	}
	return v
}

// totalCount reads X-Total-Count, falling back to n when the server did
// not paginate.
func totalCount(resp *resty.Response, n int) int {
	if raw := resp.Header().Get("X-Total-Count"); raw != "" {
		if total, err := strconv.Atoi(raw); err == nil {
			return total
		}
	}
	return n
}
