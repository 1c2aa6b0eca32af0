// Package tasks is the typed client for the task service.
package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/starack/admin-console/apiclient"
)

// Task statuses used by the management and todo views.
const (
	StatusTodo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Task as returned by the task service.
type Task struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	ProjectIDs    []string `json:"projectIds"`
	ProjectTitles []string `json:"projectTitles,omitempty"`
	AssignedTo    []string `json:"assignedTo,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// NewTask is the creation payload.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status,omitempty"`
	ProjectIDs  []string `json:"projectIds,omitempty"`
	AssignedTo  []string `json:"assignedTo,omitempty"`
}

// UpdateTask is the partial-update payload; nil fields are left untouched.
type UpdateTask struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	AssignedTo  *[]string `json:"assignedTo,omitempty"`
}

// ListParams selects a page of tasks.
type ListParams struct {
	Skip   int
	Limit  int
	Query  string
	Status string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(p.Skip))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	return v
}

// ListResult is the list envelope.
type ListResult struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// Client wraps the task service endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// List fetches one page of tasks.
func (c *Client) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var result ListResult
	if err := c.api.Get(ctx, "/task", params.values(), &result); err != nil {
		return nil, errors.Wrap(err, "[tasks.List]")
	}
	return &result, nil
}

// Get fetches a single task by ID.
func (c *Client) Get(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.api.Get(ctx, fmt.Sprintf("/task/%s", id), nil, &task); err != nil {
		return nil, errors.Wrap(err, "[tasks.Get]")
	}
	return &task, nil
}

// UserView fetches a task through the assignee-scoped endpoint used by the
// personal todo view.
func (c *Client) UserView(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.api.Get(ctx, fmt.Sprintf("/task/%s/user-view", id), nil, &task); err != nil {
		return nil, errors.Wrap(err, "[tasks.UserView]")
	}
	return &task, nil
}

// ByProject fetches every task attached to a project.
func (c *Client) ByProject(ctx context.Context, projectID string) ([]Task, error) {
	var result ListResult
	if err := c.api.Get(ctx, fmt.Sprintf("/task/project/%s", projectID), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[tasks.ByProject]")
	}
	return result.Tasks, nil
}

// Create registers a new task.
func (c *Client) Create(ctx context.Context, task NewTask) (*Task, error) {
	var created Task
	if err := c.api.Post(ctx, "/task", task, &created); err != nil {
		return nil, errors.Wrap(err, "[tasks.Create]")
	}
	return &created, nil
}

// Update applies a partial update to a task.
func (c *Client) Update(ctx context.Context, id string, update UpdateTask) (*Task, error) {
	var updated Task
	if err := c.api.Patch(ctx, fmt.Sprintf("/task/%s", id), update, &updated); err != nil {
		return nil, errors.Wrap(err, "[tasks.Update]")
	}
	return &updated, nil
}

// UpdateStatus moves a task to a new status.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*Task, error) {
	payload := map[string]string{"status": status}
	var updated Task
	if err := c.api.Patch(ctx, fmt.Sprintf("/task/%s/status", id), payload, &updated); err != nil {
		return nil, errors.Wrap(err, "[tasks.UpdateStatus]")
	}
	return &updated, nil
}

// AssignToProject attaches a task to a project.
func (c *Client) AssignToProject(ctx context.Context, taskID, projectID string) error {
	if err := c.api.Patch(ctx, fmt.Sprintf("/task/%s/assign-to-project/%s", taskID, projectID), nil, nil); err != nil {
		return errors.Wrap(err, "[tasks.AssignToProject]")
	}
	return nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/task/%s", id), nil); err != nil {
		return errors.Wrap(err, "[tasks.Delete]")
	}
	return nil
}

// Count returns the total number of tasks.
func (c *Client) Count(ctx context.Context) (int, error) {
	var resp struct {
		Data int `json:"data"`
	}
	if err := c.api.Get(ctx, "/task/count", nil, &resp); err != nil {
		return 0, errors.Wrap(err, "[tasks.Count]")
	}
	return resp.Data, nil
}
