// Package wiremail provides a client for the WireMail relay protocol.
package wiremail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Frame types pushed by the server, mirroring internal/relay.
const (
	FrameConnection = "connection"
	FrameSent       = "sent"
	FrameNewEmail   = "newEmail"
	FrameError      = "error"
)

// Frame is one unit of data pushed by the server.
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Email   *Email `json:"email,omitempty"`
}

// Email mirrors the server's stored record shape.
type Email struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Client is a WireMail client: a relay connection plus the HTTP API.
type Client struct {
	BaseURL    string
	Identity   string
	HTTPClient *http.Client

	conn *websocket.Conn
}

// NewClient creates a new WireMail client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect opens the relay connection and registers the identity. The first
// frame on the wire is the raw identity string; the server answers with a
// connection frame.
func (c *Client) Connect(identity string) (Frame, error) {
	wsURL, err := c.wsURL()
	if err != nil {
		return Frame{}, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("dial relay: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(identity)); err != nil {
		conn.Close()
		return Frame{}, fmt.Errorf("register identity: %w", err)
	}

	c.conn = conn
	c.Identity = identity

	return c.Next()
}

// Send relays a message. attachment may be empty.
func (c *Client) Send(to, body, attachment string) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	frame := to + "|" + body
	if attachment != "" {
		frame += "|" + attachment
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// Next blocks until the server pushes the next frame.
func (c *Client) Next() (Frame, error) {
	if c.conn == nil {
		return Frame{}, fmt.Errorf("not connected")
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, err
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// Close shuts the relay connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Register creates a mailbox over the HTTP API.
func (c *Client) Register(email string) error {
	body, _ := json.Marshal(map[string]string{"email": email})

	resp, err := c.HTTPClient.Post(c.BaseURL+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	return nil
}

// History fetches the full email history for an address.
func (c *Client) History(address string) ([]Email, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL + "/api/emails/" + url.PathEscape(address))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var emails []Email
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// Delete removes one email record by ID.
func (c *Client) Delete(id string) error {
	req, err := http.NewRequest(http.MethodDelete, c.BaseURL+"/api/emails/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// Upload stores an attachment and returns its reference for use in Send.
func (c *Client) Upload(filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.HTTPClient.Post(c.BaseURL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", apiError(resp)
	}

	var out struct {
		Attachment string `json:"attachment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Attachment, nil
}

// wsURL derives the relay endpoint from the base URL.
func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func apiError(resp *http.Response) error {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error != "" {
		return fmt.Errorf("%s", out.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
