package mailtm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagar7778/emailtemp/config"
	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/models"
	"github.com/sagar7778/emailtemp/internal/session"
)

// fakeMailTm emulates the subset of the Mail.tm API the adapter talks to.
type fakeMailTm struct {
	mu          sync.Mutex
	tokenCalls  int
	accounts    map[string]string // address -> password
	lastAddress string
	messages    []map[string]any
}

func newFakeMailTm() *fakeMailTm {
	return &fakeMailTm{accounts: make(map[string]string)}
}

func (f *fakeMailTm) TokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

func (f *fakeMailTm) handler(expiresIn time.Duration, base time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/domains":
			json.NewEncoder(w).Encode(map[string]any{
				"hydra:member": []map[string]string{{"id": "d1", "domain": "mail.tm"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/accounts":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			f.accounts[body["address"]] = body["password"]
			f.lastAddress = body["address"]
			json.NewEncoder(w).Encode(map[string]string{"id": "acct-1", "address": body["address"]})
		case r.Method == http.MethodPost && r.URL.Path == "/token":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if f.accounts[body["address"]] != body["password"] {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			f.tokenCalls++
			json.NewEncoder(w).Encode(map[string]string{
				"token":      fmt.Sprintf("tok-%d", f.tokenCalls),
				"expires_at": base.Add(expiresIn).Format(time.RFC3339),
			})
		case r.Method == http.MethodGet && r.URL.Path == "/messages":
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"hydra:member": f.messages})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/messages/"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestService(t *testing.T, fake *fakeMailTm, expiresIn time.Duration) (*mailTmService, time.Time) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(fake.handler(expiresIn, base))
	t.Cleanup(server.Close)

	svc := &mailTmService{
		cfg:        &config.MailTmConfig{BaseURL: server.URL, Enabled: true},
		httpClient: server.Client(),
		secrets:    make(map[string]*models.MailboxSecret),
		now:        func() time.Time { return base },
	}
	return svc, base
}

func TestCreateMailbox_RandomLocalPart(t *testing.T) {
	// Arrange
	fake := newFakeMailTm()
	svc, _ := newTestService(t, fake, time.Hour)

	// Act
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "acct-1", mailbox.ID)
	assert.Equal(t, ProviderID, mailbox.Provider)
	require.True(t, strings.HasSuffix(mailbox.Address, "@mail.tm"))

	local := strings.TrimSuffix(mailbox.Address, "@mail.tm")
	assert.Len(t, local, 10)
	assert.Equal(t, strings.ToLower(local), local)

	require.NotNil(t, mailbox.Secret)
	assert.NotEmpty(t, mailbox.Secret.Password)
	assert.Equal(t, "tok-1", mailbox.Secret.Token)
	assert.Equal(t, 1, fake.TokenCalls())
}

func TestCreateMailbox_VerbatimLocalPart(t *testing.T) {
	fake := newFakeMailTm()
	svc, _ := newTestService(t, fake, time.Hour)

	mailbox, err := svc.CreateMailbox(context.Background(), "Chosen.Name", "mail.tm")

	require.NoError(t, err)
	assert.Equal(t, "Chosen.Name@mail.tm", mailbox.Address)
}

func TestListMessages_FreshTokenIsReused(t *testing.T) {
	// Arrange: token valid well past the safety margin
	fake := newFakeMailTm()
	fake.messages = []map[string]any{
		{"id": "m1", "from": map[string]string{"address": "a@b.c"}, "subject": "hi", "intro": "hello", "seen": false, "createdAt": "2025-06-01T11:59:00Z"},
	}
	svc, _ := newTestService(t, fake, time.Hour)
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")
	require.NoError(t, err)

	// Act
	messages, updated, err := svc.ListMessages(context.Background(), mailbox)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, updated)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "a@b.c", messages[0].From)
	assert.True(t, messages[0].Unread)
	assert.Equal(t, 1, fake.TokenCalls())
}

func TestListMessages_NearExpiryRefreshesOnce(t *testing.T) {
	// Arrange: token expires 10s out, inside the 60s safety margin
	fake := newFakeMailTm()
	svc, base := newTestService(t, fake, 10*time.Second)
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")
	require.NoError(t, err)
	require.Equal(t, 1, fake.TokenCalls())

	// Act: the authenticated call re-authenticates exactly once
	_, updated, err := svc.ListMessages(context.Background(), mailbox)
	require.NoError(t, err)

	// Assert
	require.NotNil(t, updated)
	require.NotNil(t, updated.Secret)
	assert.Equal(t, "tok-2", updated.Secret.Token)
	assert.Equal(t, base.Add(10*time.Second), updated.Secret.TokenExpires)
	assert.Equal(t, 2, fake.TokenCalls())

	// the refreshed credential is cached under the account id so a redacted
	// handle resolves to it
	redacted := session.Materialize(updated)
	require.Nil(t, redacted.Secret)
	cached := svc.lookupSecret(redacted.SecretRef.ID)
	require.NotNil(t, cached)
	assert.Equal(t, "tok-2", cached.Token)
}

func TestListMessages_RedactedMailboxReauthenticatesViaRef(t *testing.T) {
	// Arrange
	fake := newFakeMailTm()
	svc, _ := newTestService(t, fake, time.Hour)
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")
	require.NoError(t, err)

	redacted := session.Materialize(mailbox)
	require.Nil(t, redacted.Secret)
	require.NotNil(t, redacted.SecretRef)

	// Act
	messages, updated, err := svc.ListMessages(context.Background(), redacted)

	// Assert: the cached credential serves the call without a new token
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.NotNil(t, messages)
	assert.Equal(t, 1, fake.TokenCalls())
}

func TestListMessages_ForgedRefFailsClosed(t *testing.T) {
	// Arrange
	fake := newFakeMailTm()
	svc, _ := newTestService(t, fake, time.Hour)

	forged := &models.Mailbox{
		ID:        "acct-1",
		Address:   "victim@mail.tm",
		Provider:  ProviderID,
		SecretRef: &models.SecretRef{ID: "not-a-known-account"},
	}

	// Act
	_, _, err := svc.ListMessages(context.Background(), forged)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrAuthFailed))
	assert.Equal(t, 0, fake.TokenCalls())
}

func TestGetMessage_NotFound(t *testing.T) {
	fake := newFakeMailTm()
	svc, _ := newTestService(t, fake, time.Hour)
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")
	require.NoError(t, err)

	_, _, err = svc.GetMessage(context.Background(), mailbox, "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrMessageNotFound))
}

func TestEnabled(t *testing.T) {
	assert.True(t, (&mailTmService{cfg: &config.MailTmConfig{BaseURL: "https://api.mail.tm", Enabled: true}}).Enabled())
	assert.False(t, (&mailTmService{cfg: &config.MailTmConfig{BaseURL: "", Enabled: true}}).Enabled())
	assert.False(t, (&mailTmService{cfg: &config.MailTmConfig{BaseURL: "https://api.mail.tm", Enabled: false}}).Enabled())
}
