package odoo

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
)

// RPC is the part of the Odoo API the mirror uses.
type RPC interface {
	SearchRead(model string, domain []interface{}, fields []string, limit, offset int) ([]Record, error)
	Write(model string, ids []int64, values map[string]interface{}) error
}

// Client represents an Odoo XML-RPC client
type Client struct {
	URL        string
	Database   string
	Username   string
	Password   string
	Uid        int
	CommonURL  string
	ObjectURL  string
	HttpClient *http.Client
}

var _ RPC = (*Client)(nil)

// NewClient creates a new Odoo client
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:        url,
		Database:   db,
		Username:   username,
		Password:   password,
		CommonURL:  fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL:  fmt.Sprintf("%s/xmlrpc/2/object", url),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate authenticates with Odoo and returns the user ID
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, c.HttpClient.Transport)
	if err != nil {
		return 0, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, fmt.Errorf("authentication failed: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("authentication failed: invalid credentials for %s", c.Username)
	}

	c.Uid = uid
	return uid, nil
}

// executeKw calls model.method through execute_kw, authenticating on first use.
func (c *Client) executeKw(model, method string, params []interface{}, kwargs map[string]interface{}, result interface{}) error {
	if c.Uid == 0 {
		if _, err := c.Authenticate(); err != nil {
			return err
		}
	}

	client, err := xmlrpc.NewClient(c.ObjectURL, c.HttpClient.Transport)
	if err != nil {
		return fmt.Errorf("failed to create XML-RPC client: %w", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Uid, c.Password, model, method, params}
	if kwargs != nil {
		args = append(args, kwargs)
	}
	if err := client.Call("execute_kw", args, result); err != nil {
		return fmt.Errorf("failed to execute %s on %s: %w", method, model, err)
	}
	return nil
}

// SearchRead performs a generic search_read operation
// model: Odoo model name (e.g., "product.product")
// domain: search criteria
// fields: fields to fetch
// limit: max records
// offset: offset for pagination
func (c *Client) SearchRead(model string, domain []interface{}, fields []string, limit, offset int) ([]Record, error) {
	var raw []map[string]interface{}
	err := c.executeKw(model, "search_read", []interface{}{domain}, map[string]interface{}{
		"fields": fields,
		"limit":  limit,
		"offset": offset,
		"order":  "id",
	}, &raw)
	if err != nil {
		return nil, err
	}

	out := make([]Record, len(raw))
	for i, r := range raw {
		out[i] = Record(r)
	}
	return out, nil
}

// Write updates existing record(s)
func (c *Client) Write(model string, ids []int64, values map[string]interface{}) error {
	var success bool
	if err := c.executeKw(model, "write", []interface{}{ids, values}, nil, &success); err != nil {
		return err
	}
	if !success {
		return fmt.Errorf("write operation returned false")
	}
	return nil
}
