// Package users is the typed client for the user service.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/starack/admin-console/apiclient"
	"github.com/starack/admin-console/session"
)

// User as returned by the user service.
type User struct {
	ID          string       `json:"_id"`
	Fullname    string       `json:"fullname"`
	Email       string       `json:"email"`
	Role        session.Role `json:"role"`
	Status      string       `json:"status"`
	AccountType string       `json:"accountType"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

// NewUser is the creation payload.
type NewUser struct {
	Fullname    string       `json:"fullname"`
	Email       string       `json:"email"`
	Password    string       `json:"password"`
	Role        session.Role `json:"role"`
	Status      string       `json:"status,omitempty"`
	AccountType string       `json:"accountType,omitempty"`
}

// UpdateUser is the partial-update payload; nil fields are left untouched.
type UpdateUser struct {
	Fullname    *string       `json:"fullname,omitempty"`
	Email       *string       `json:"email,omitempty"`
	Role        *session.Role `json:"role,omitempty"`
	Status      *string       `json:"status,omitempty"`
	AccountType *string       `json:"accountType,omitempty"`
}

// ListParams selects a page of users. Zero-valued filters are omitted from
// the query string.
type ListParams struct {
	Skip   int
	Limit  int
	Query  string
	Role   string
	Status string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(p.Skip))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	return v
}

// ListResult is the list envelope.
type ListResult struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Client wraps the user service endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// List fetches one page of users.
func (c *Client) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var result ListResult
	if err := c.api.Get(ctx, "/user", params.values(), &result); err != nil {
		return nil, errors.Wrap(err, "[users.List]")
	}
	return &result, nil
}

// Get fetches a single user by ID.
func (c *Client) Get(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.api.Get(ctx, fmt.Sprintf("/user/%s", id), nil, &user); err != nil {
		return nil, errors.Wrap(err, "[users.Get]")
	}
	return &user, nil
}

// Create registers a new user.
func (c *Client) Create(ctx context.Context, user NewUser) (*User, error) {
	var created User
	if err := c.api.Post(ctx, "/user", user, &created); err != nil {
		return nil, errors.Wrap(err, "[users.Create]")
	}
	return &created, nil
}

// Update applies a partial update to a user.
func (c *Client) Update(ctx context.Context, id string, update UpdateUser) (*User, error) {
	var updated User
	if err := c.api.Patch(ctx, fmt.Sprintf("/user/%s", id), update, &updated); err != nil {
		return nil, errors.Wrap(err, "[users.Update]")
	}
	return &updated, nil
}

// Delete removes a user.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/user/%s", id), nil); err != nil {
		return errors.Wrap(err, "[users.Delete]")
	}
	return nil
}

// Count returns the total number of users.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Data int `json:"data"`
	}
	if err := c.api.Get(ctx, "/user/count", nil, &resp); err != nil {
		return 0, errors.Wrap(err, "[users.Count]")
	}
	return resp.Data, nil
}
