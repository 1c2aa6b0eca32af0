// Package chat is the placeholder client for the chat service. The console
// constructs it alongside the other clients so the shared refresh protocol
// already covers the service, but no resource endpoints are exposed yet.
package chat

import (
	"github.com/starack/admin-console/apiclient"
)

// Client wraps the chat service. No operations are defined; the backend is
// not live.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}
