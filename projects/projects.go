// Package projects is the typed client for the project service.
package projects

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/starack/admin-console/apiclient"
)

// Project as returned by the project service.
type Project struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// NewProject is the creation payload.
type NewProject struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId,omitempty"`
}

// UpdateProject is the partial-update payload; nil fields are left untouched.
type UpdateProject struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	OwnerID     *string `json:"ownerId,omitempty"`
}

// ListParams selects a page of projects.
type ListParams struct {
	Skip    int
	Limit   int
	Query   string
	OwnedBy string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(p.Skip))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.OwnedBy != "" {
		v.Set("ownedBy", p.OwnedBy)
	}
	return v
}

// ListResult is the list envelope.
type ListResult struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}

// Client wraps the project service endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// List fetches one page of projects.
func (c *Client) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var result ListResult
	if err := c.api.Get(ctx, "/project", params.values(), &result); err != nil {
		return nil, errors.Wrap(err, "[projects.List]")
	}
	return &result, nil
}

// Get fetches a single project by ID.
func (c *Client) Get(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.api.Get(ctx, fmt.Sprintf("/project/%s", id), nil, &project); err != nil {
		return nil, errors.Wrap(err, "[projects.Get]")
	}
	return &project, nil
}

// Create registers a new project.
func (c *Client) Create(ctx context.Context, project NewProject) (*Project, error) {
	var created Project
	if err := c.api.Post(ctx, "/project", project, &created); err != nil {
		return nil, errors.Wrap(err, "[projects.Create]")
	}
	return &created, nil
}

// Update applies a partial update to a project.
func (c *Client) Update(ctx context.Context, id string, update UpdateProject) (*Project, error) {
	var updated Project
	if err := c.api.Patch(ctx, fmt.Sprintf("/project/%s", id), update, &updated); err != nil {
		return nil, errors.Wrap(err, "[projects.Update]")
	}
	return &updated, nil
}

// Delete removes a project.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/project/%s", id), nil); err != nil {
		return errors.Wrap(err, "[projects.Delete]")
	}
	return nil
}

// Count returns the total number of projects.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Data int `json:"data"`
	}
	if err := c.api.Get(ctx, "/project/count", nil, &resp); err != nil {
		return 0, errors.Wrap(err, "[projects.Count]")
	}
	return resp.Data, nil
}
