package security

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokens(t *testing.T, ttl time.Duration, now func() time.Time) *sessionTokensImpl {
	t.Helper()
	tokens, err := NewSessionTokens(testSecret, ttl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	impl := tokens.(*sessionTokensImpl)
	impl.now = now
	return impl
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tokens := newTestTokens(t, time.Hour, time.Now)
	sessionId, token, err := tokens.NewSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(sessionId); err != nil {
		t.Fatalf("session id is not a uuid: %v", err)
	}
	got, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SessionId != sessionId {
		t.Fatalf("expected %s, got %s", sessionId, got.SessionId)
	}
}

func TestSessionTokenRenewDue(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	tokens := newTestTokens(t, time.Hour, func() time.Time { return clock })

	token, err := tokens.Issue(uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.Expiry.Equal(issued.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %s", claims.Expiry)
	}
	clock = issued.Add(10 * time.Minute)
	if tokens.RenewDue(claims.Expiry) {
		t.Fatal("fresh token must not be renewed")
	}
	clock = issued.Add(40 * time.Minute)
	if !tokens.RenewDue(claims.Expiry) {
		t.Fatal("token past half of its lifetime must be renewed")
	}
}

func TestSessionTokenRejectsShortSecret(t *testing.T) {
	if _, err := NewSessionTokens([]byte("short"), time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestSessionTokenRejectsTampered(t *testing.T) {
	tokens := newTestTokens(t, time.Hour, time.Now)
	_, token, err := tokens.NewSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format %q", token)
	}

	other := newTestTokens(t, time.Hour, time.Now)
	other.secret = []byte("fedcba9876543210fedcba9876543210")
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}

	forged, _, err := tokens.NewSession()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forgedParts := strings.Split(forged, ".")
	mixed := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if _, err := tokens.Parse(mixed); err == nil {
		t.Fatal("token with swapped payload must be rejected")
	}

	if _, err := tokens.Parse("not-a-token"); err == nil {
		t.Fatal("garbage must be rejected")
	}
}

func TestSessionTokenExpires(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	tokens := newTestTokens(t, time.Hour, func() time.Time { return clock })

	token, err := tokens.Issue(uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock = issued.Add(59 * time.Minute)
	if _, err := tokens.Parse(token); err != nil {
		t.Fatalf("token must still be valid: %v", err)
	}
	clock = issued.Add(61 * time.Minute)
	if _, err := tokens.Parse(token); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestSessionTokenRequiresSessionIdSubject(t *testing.T) {
	tokens := newTestTokens(t, time.Hour, time.Now)
	token, err := tokens.Issue("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tokens.Parse(token); err == nil {
		t.Fatal("subject that is not a session id must be rejected")
	}
}
