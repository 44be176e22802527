// Package jira implements the REST orchestration layer for Jira Cloud: the
// transport gateway, custom field discovery, pagination drivers, the
// board/sprint aggregation and the typed read and write operations built on
// them.
package jira

import (
	"fmt"

	"github.com/danielolaszy/jiradesk/internal/config"
)

// Client handles interactions with the JIRA API for one configuration.
// A new configuration needs a new Client; the field cache belongs to it.
type Client struct {
	gateway *Gateway
	fields  *FieldCache
}

// NewClient creates a client for the given instance and credentials.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	gateway, err := NewGateway(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jira client: %w", err)
	}

	return &Client{
		gateway: gateway,
		fields:  NewFieldCache(gateway),
	}, nil
}

// Fields returns the client's field metadata cache.
func (c *Client) Fields() *FieldCache {
	return c.fields
}
