package relay

import (
	"errors"
	"testing"
)

func TestRelayPersistsThenDeliversLive(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, aliceConn := registeredSession(t, e, "alice@example.com")
	_, bobConn := registeredSession(t, e, "bob@example.com")

	alice.HandleFrame("bob@example.com|hello bob")

	saved := db.saved()
	if len(saved) != 1 {
		t.Fatalf("expected 1 persisted email, got %d", len(saved))
	}
	if saved[0].From != "alice@example.com" || saved[0].To != "bob@example.com" || saved[0].Body != "hello bob" {
		t.Fatalf("unexpected persisted email: %+v", saved[0])
	}

	bobFrames := bobConn.written()
	if len(bobFrames) != 2 {
		t.Fatalf("expected welcome + delivery for bob, got %d frames", len(bobFrames))
	}
	delivery := bobFrames[1]
	if delivery.Type != FrameNewEmail || delivery.Email == nil {
		t.Fatalf("unexpected delivery frame: %+v", delivery)
	}
	if delivery.Email.ID != saved[0].ID || delivery.Email.Body != "hello bob" {
		t.Fatalf("delivered email does not match stored record: %+v", delivery.Email)
	}

	aliceFrames := aliceConn.written()
	if len(aliceFrames) != 2 {
		t.Fatalf("expected welcome + confirmation for alice, got %d frames", len(aliceFrames))
	}
	if aliceFrames[1].Type != FrameSent || aliceFrames[1].Message != "Email sent to bob@example.com" {
		t.Fatalf("unexpected confirmation frame: %+v", aliceFrames[1])
	}
}

func TestRelayOfflineRecipientStillConfirms(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, aliceConn := registeredSession(t, e, "alice@example.com")

	alice.HandleFrame("bob@example.com|anyone home?")

	if n, _ := db.CountEmails(nil); n != 1 {
		t.Fatalf("expected 1 persisted email, got %d", n)
	}

	frames := aliceConn.written()
	if len(frames) != 2 || frames[1].Type != FrameSent {
		t.Fatalf("expected sent confirmation despite offline recipient, got %+v", frames)
	}
}

func TestRelayPersistenceFailure(t *testing.T) {
	db := &fakeStore{saveErr: errors.New("disk full")}
	e := newTestEngine(t, db)

	alice, aliceConn := registeredSession(t, e, "alice@example.com")
	_, bobConn := registeredSession(t, e, "bob@example.com")

	alice.HandleFrame("bob@example.com|hello")

	aliceFrames := aliceConn.written()
	if len(aliceFrames) != 2 {
		t.Fatalf("expected welcome + error for alice, got %d frames", len(aliceFrames))
	}
	if aliceFrames[1].Type != FrameError || aliceFrames[1].Message != "disk full" {
		t.Fatalf("unexpected error frame: %+v", aliceFrames[1])
	}

	// No delivery and no confirmation when the write failed.
	if frames := bobConn.written(); len(frames) != 1 {
		t.Fatalf("expected no delivery to recipient, got %+v", frames[1:])
	}
	if n, _ := db.CountEmails(nil); n != 0 {
		t.Fatalf("expected no persisted emails, got %d", n)
	}
}

func TestRelayToSelf(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, conn := registeredSession(t, e, "alice@example.com")

	alice.HandleFrame("alice@example.com|note to self")

	frames := conn.written()
	if len(frames) != 3 {
		t.Fatalf("expected welcome + delivery + confirmation, got %d frames", len(frames))
	}
	if frames[1].Type != FrameNewEmail {
		t.Fatalf("expected delivery before confirmation, got %+v", frames[1])
	}
	if frames[2].Type != FrameSent {
		t.Fatalf("expected confirmation last, got %+v", frames[2])
	}
}

func TestRelayAttachmentPassedThrough(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, _ := registeredSession(t, e, "alice@example.com")
	_, bobConn := registeredSession(t, e, "bob@example.com")

	alice.HandleFrame("bob@example.com|see attached|ref-123")

	saved := db.saved()
	if len(saved) != 1 || saved[0].Attachment != "ref-123" {
		t.Fatalf("expected attachment persisted, got %+v", saved)
	}
	frames := bobConn.written()
	if frames[1].Email.Attachment != "ref-123" {
		t.Fatalf("expected attachment delivered, got %q", frames[1].Email.Attachment)
	}
}

func TestRelayPerSenderOrdering(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, aliceConn := registeredSession(t, e, "alice@example.com")
	_, bobConn := registeredSession(t, e, "bob@example.com")

	alice.HandleFrame("bob@example.com|first")
	alice.HandleFrame("bob@example.com|second")
	alice.HandleFrame("bob@example.com|third")

	bobFrames := bobConn.written()[1:]
	if len(bobFrames) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(bobFrames))
	}
	for i, want := range []string{"first", "second", "third"} {
		if bobFrames[i].Email.Body != want {
			t.Fatalf("delivery %d: expected %q, got %q", i, want, bobFrames[i].Email.Body)
		}
	}

	aliceFrames := aliceConn.written()[1:]
	if len(aliceFrames) != 3 {
		t.Fatalf("expected 3 confirmations, got %d", len(aliceFrames))
	}
	for i, f := range aliceFrames {
		if f.Type != FrameSent {
			t.Fatalf("confirmation %d: unexpected frame %+v", i, f)
		}
	}
}

func TestDeliverySkipsClosedRecipient(t *testing.T) {
	db := &fakeStore{}
	e := newTestEngine(t, db)

	alice, aliceConn := registeredSession(t, e, "alice@example.com")
	bob, bobConn := registeredSession(t, e, "bob@example.com")

	// A closed session that somehow lingers in the registry must not
	// receive deliveries.
	bob.mu.Lock()
	bob.state = StateClosed
	bob.mu.Unlock()

	alice.HandleFrame("bob@example.com|hello")

	if frames := bobConn.written(); len(frames) != 1 {
		t.Fatalf("expected no delivery to closed session, got %+v", frames[1:])
	}
	if frames := aliceConn.written(); len(frames) != 2 || frames[1].Type != FrameSent {
		t.Fatal("expected sender confirmation regardless of recipient state")
	}
}
