package relay

import (
	"fmt"
	"strings"

	"github.com/eldtechnologies/wiremail/internal/models"
)

// Outbound frame types, matching what the web client renders.
const (
	FrameConnection = "connection"
	FrameSent       = "sent"
	FrameNewEmail   = "newEmail"
	FrameError      = "error"
)

// Frame is one outbound unit of data pushed over a session.
type Frame struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Email   *models.Email `json:"email,omitempty"`
}

func connectionFrame(identity string) Frame {
	return Frame{Type: FrameConnection, Message: fmt.Sprintf("Welcome, %s!", identity)}
}

func sentFrame(recipient string) Frame {
	return Frame{Type: FrameSent, Message: fmt.Sprintf("Email sent to %s", recipient)}
}

func newEmailFrame(email *models.Email) Frame {
	return Frame{Type: FrameNewEmail, Email: email}
}

func errorFrame(message string) Frame {
	return Frame{Type: FrameError, Message: message}
}

// Request is a parsed send intent from a registered session.
type Request struct {
	To         string
	Body       string
	Attachment string
}

// parseRequest parses a send frame of the form "recipient|body" or
// "recipient|body|attachment". Frames with any other field count, or with an
// empty recipient or body, are malformed and silently dropped by the caller.
func parseRequest(raw string) (Request, bool) {
	fields := strings.Split(raw, "|")
	if len(fields) != 2 && len(fields) != 3 {
		return Request{}, false
	}

	req := Request{To: fields[0], Body: fields[1]}
	if len(fields) == 3 {
		req.Attachment = fields[2]
	}

	if req.To == "" || req.Body == "" {
		return Request{}, false
	}
	return req, true
}
