package relay

import "testing"

func TestParseRequestTwoFields(t *testing.T) {
	req, ok := parseRequest("bob@example.com|hello")
	if !ok {
		t.Fatal("expected valid request")
	}
	if req.To != "bob@example.com" || req.Body != "hello" || req.Attachment != "" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseRequestWithAttachment(t *testing.T) {
	req, ok := parseRequest("bob@example.com|see attached|ref123")
	if !ok {
		t.Fatal("expected valid request")
	}
	if req.Attachment != "ref123" {
		t.Fatalf("expected attachment ref123, got %q", req.Attachment)
	}
}

func TestParseRequestEmptyAttachmentField(t *testing.T) {
	req, ok := parseRequest("bob@example.com|hello|")
	if !ok {
		t.Fatal("expected valid request")
	}
	if req.Attachment != "" {
		t.Fatalf("expected empty attachment, got %q", req.Attachment)
	}
}

func TestParseRequestMalformed(t *testing.T) {
	cases := []string{
		"",
		"no separator",
		"bob@example.com",
		"|body only",
		"bob@example.com|",
		"a|b|c|d",
		"||",
	}
	for _, raw := range cases {
		if _, ok := parseRequest(raw); ok {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestConnectionFrameText(t *testing.T) {
	f := connectionFrame("alice@example.com")
	if f.Type != FrameConnection {
		t.Fatalf("expected type %q, got %q", FrameConnection, f.Type)
	}
	if f.Message != "Welcome, alice@example.com!" {
		t.Fatalf("unexpected message: %q", f.Message)
	}
}

func TestSentFrameText(t *testing.T) {
	f := sentFrame("bob@example.com")
	if f.Type != FrameSent {
		t.Fatalf("expected type %q, got %q", FrameSent, f.Type)
	}
	if f.Message != "Email sent to bob@example.com" {
		t.Fatalf("unexpected message: %q", f.Message)
	}
}

func TestErrorFrame(t *testing.T) {
	f := errorFrame("disk full")
	if f.Type != FrameError || f.Message != "disk full" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}
