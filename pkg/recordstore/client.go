package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Fields is the untyped wire shape of one table row. Typed records
// exist only inside the domain packages; this map is the boundary.
type Fields map[string]any

// Record pairs the backend row id with its fields.
type Record struct {
	ID     string
	Fields Fields
}

// Client talks to the low-code table backend over its v2 REST API.
// It owns pagination and auth; callers deal in table ids and Fields.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL, token string, log *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query narrows a GetAll call.
type Query struct {
	Where string
	Limit int
}

type listResponse struct {
	List     []Fields `json:"list"`
	PageInfo struct {
		IsLastPage bool `json:"isLastPage"`
		TotalRows  int  `json:"totalRows"`
	} `json:"pageInfo"`
}

// GetAll fetches every row of a table, following pagination until the
// backend reports the last page. A Limit in q caps the page size, not
// the total.
func (c *Client) GetAll(ctx context.Context, tableID string, q Query) ([]Record, error) {
	pageSize := q.Limit
	if pageSize <= 0 {
		pageSize = 100
	}

	var out []Record
	offset := 0
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("offset", strconv.Itoa(offset))
		if q.Where != "" {
			params.Set("where", q.Where)
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.recordsURL(tableID)+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		for _, f := range resp.List {
			out = append(out, Record{ID: recordID(f), Fields: f})
		}
		if resp.PageInfo.IsLastPage || len(resp.List) == 0 {
			break
		}
		offset += pageSize
		if q.Limit > 0 && offset >= resp.PageInfo.TotalRows {
			break
		}
	}

	c.log.WithFields(logrus.Fields{"table": tableID, "count": len(out)}).Debug("fetched records")
	return out, nil
}

// Create inserts one row and returns it with the assigned id.
func (c *Client) Create(ctx context.Context, tableID string, fields Fields) (Record, error) {
	var created Fields
	if err := c.do(ctx, http.MethodPost, c.recordsURL(tableID), fields, &created); err != nil {
		return Record{}, err
	}
	return Record{ID: recordID(created), Fields: created}, nil
}

// Update patches the listed fields of one row.
func (c *Client) Update(ctx context.Context, tableID, id string, fields Fields) error {
	body := make(Fields, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["Id"] = id
	return c.do(ctx, http.MethodPatch, c.recordsURL(tableID), body, nil)
}

// Delete removes one row.
func (c *Client) Delete(ctx context.Context, tableID, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordsURL(tableID), Fields{"Id": id}, nil)
}

func (c *Client) recordsURL(tableID string) string {
	return fmt.Sprintf("%s/api/v2/tables/%s/records", c.baseURL, tableID)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("xc-token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("record store %s %s: status %d: %s", method, rawURL, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// recordID extracts the backend row id; the v2 API returns it as the
// numeric Id column.
func recordID(f Fields) string {
	switch v := f["Id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
