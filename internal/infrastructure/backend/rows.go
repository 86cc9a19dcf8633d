package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

// Row-store access following PostgREST conventions: tables under /rest/v1,
// filters as query params ("id=eq.42"), ordering via "order", upserts via
// the merge-duplicates Prefer header.

// Select reads rows from table into dest (a pointer to a slice). filter maps
// column names to PostgREST operators; order is e.g. "created_at.desc".
func (c *Client) Select(ctx context.Context, table string, filter map[string]string, order string, dest any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "*")
	for column, op := range filter {
		req.SetQueryParam(column, op)
	}
	if order != "" {
		req.SetQueryParam("order", order)
	}

	resp, err := req.Get("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := asBackendError(resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("select %s: decode rows: %w", table, err)
	}
	return nil
}

// Upsert inserts row into table, merging on primary-key conflict.
func (c *Client) Upsert(ctx context.Context, table string, row any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody(row).
		Post("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return asBackendError(resp)
}

// Update patches all rows in table matching filter.
func (c *Client) Update(ctx context.Context, table string, patch any, filter map[string]string) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(patch)
	for column, op := range filter {
		req.SetQueryParam(column, op)
	}

	resp, err := req.Patch("/rest/v1/" + table)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return asBackendError(resp)
}
