package pages

import (
	"VPN-Admin-dashboard/internal/api"
	"VPN-Admin-dashboard/internal/fakeapi"
	"VPN-Admin-dashboard/internal/session"
	"context"
	"testing"
	"time"
)

// backendFixture is a fake backend and a client authenticated against it.
type backendFixture struct {
	fake   *fakeapi.Backend
	store  *session.MemoryStore
	sess   *session.Session
	client *api.Client
}

func newFixture(t *testing.T) *backendFixture {
	t.Helper()
	fake := fakeapi.New()
	t.Cleanup(fake.Close)
	ctx := context.Background()
	store := session.NewMemoryStore()
	sess, err := session.Open(ctx, store, "adminToken:test", time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := sess.Authenticate(ctx, fake.IssueToken()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return &backendFixture{
		fake:   fake,
		store:  store,
		sess:   sess,
		client: api.New(api.Config{BaseURL: fake.URL()}, sess),
	}
}
