package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
)

// GetSettings returns the whole overlay configuration
func (c *Client) GetSettings(ctx context.Context) (*v1alpha1.Settings, error) {
	var out v1alpha1.Settings
	if err := c.doRequest(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutSettings replaces the whole overlay configuration
func (c *Client) PutSettings(ctx context.Context, s *v1alpha1.Settings) (*v1alpha1.Settings, error) {
	var out v1alpha1.Settings
	if err := c.doRequest(ctx, http.MethodPut, "/settings", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem appends a content item and returns it with its assigned id
func (c *Client) AddItem(ctx context.Context, item *v1alpha1.ContentItem) (*v1alpha1.ContentItem, error) {
	var out v1alpha1.ContentItem
	if err := c.doRequest(ctx, http.MethodPost, "/items", item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveItem deletes a content item
func (c *Client) RemoveItem(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil)
}

// AddGroup appends a display group and returns it with its assigned id
func (c *Client) AddGroup(ctx context.Context, group *v1alpha1.DisplayGroup) (*v1alpha1.DisplayGroup, error) {
	var out v1alpha1.DisplayGroup
	if err := c.doRequest(ctx, http.MethodPost, "/groups", group, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveGroup deletes a display group
func (c *Client) RemoveGroup(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/groups/%d", id), nil, nil)
}

// GetPageGroup returns the group assigned to page
func (c *Client) GetPageGroup(ctx context.Context, page string) (*v1alpha1.PageGroup, error) {
	var out v1alpha1.PageGroup
	if err := c.doRequest(ctx, http.MethodGet, pagePath(page, "group"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPageGroup assigns page to group, clearing it when group is empty
func (c *Client) SetPageGroup(ctx context.Context, page, group string) (*v1alpha1.PageGroup, error) {
	var out v1alpha1.PageGroup
	body := v1alpha1.PageGroup{Group: group}
	if err := c.doRequest(ctx, http.MethodPut, pagePath(page, "group"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOverlays returns what page rotates through
func (c *Client) GetOverlays(ctx context.Context, page string) (*v1alpha1.EligibleItems, error) {
	var out v1alpha1.EligibleItems
	if err := c.doRequest(ctx, http.MethodGet, pagePath(page, "overlays"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pagePath(page, leaf string) string {
	return "/pages/" + url.PathEscape(page) + "/" + leaf
}
