package onesec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagar7778/emailtemp/config"
	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/models"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *oneSecService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &oneSecService{
		cfg:        &config.OneSecConfig{BaseURL: server.URL, Enabled: true},
		httpClient: server.Client(),
		now:        func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func queryHandler(t *testing.T, responses map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		body, ok := responses[action]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(body)
	}
}

func TestCreateMailbox_RandomAddressFromLiveDomains(t *testing.T) {
	// Arrange
	svc := newTestService(t, queryHandler(t, map[string]any{
		"getDomainList": []string{"1secmail.com", "1secmail.org"},
	}))

	// Act
	mailbox, err := svc.CreateMailbox(context.Background(), "", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ProviderID, mailbox.Provider)
	assert.Equal(t, mailbox.Address, mailbox.ID)
	require.True(t, strings.HasSuffix(mailbox.Address, "@1secmail.com"))

	local := strings.TrimSuffix(mailbox.Address, "@1secmail.com")
	assert.Len(t, local, 10)
	assert.Equal(t, strings.ToLower(local), local)
	assert.Nil(t, mailbox.Secret)
}

func TestCreateMailbox_VerbatimLocalAndDomain(t *testing.T) {
	svc := newTestService(t, queryHandler(t, map[string]any{}))

	mailbox, err := svc.CreateMailbox(context.Background(), "my.name", "1secmail.org")

	require.NoError(t, err)
	assert.Equal(t, "my.name@1secmail.org", mailbox.Address)
}

func TestCreateMailbox_FallbackDomainWhenDiscoveryFails(t *testing.T) {
	// Arrange: domain discovery 404s, creation must still succeed
	svc := newTestService(t, queryHandler(t, map[string]any{}))

	// Act
	mailbox, err := svc.CreateMailbox(context.Background(), "abc", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "abc@"+fallbackDomains[0], mailbox.Address)
}

func TestListMessages_MapsSummaries(t *testing.T) {
	// Arrange
	svc := newTestService(t, queryHandler(t, map[string]any{
		"getMessages": []map[string]any{
			{"id": 101, "from": "sender@example.com", "subject": "hello", "date": "2025-06-01 11:00:00", "seen": false},
		},
	}))
	mailbox := &models.Mailbox{ID: "abc@1secmail.com", Address: "abc@1secmail.com", Provider: ProviderID}

	// Act
	messages, updated, err := svc.ListMessages(context.Background(), mailbox)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, updated)
	require.Len(t, messages, 1)
	assert.Equal(t, "101", messages[0].ID)
	assert.Equal(t, "sender@example.com", messages[0].From)
	assert.True(t, messages[0].Unread)
}

func TestListMessages_DegradesFailureToEmpty(t *testing.T) {
	// Arrange: upstream serves errors
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mailbox := &models.Mailbox{ID: "abc@1secmail.com", Address: "abc@1secmail.com", Provider: ProviderID}

	// Act
	messages, updated, err := svc.ListMessages(context.Background(), mailbox)

	// Assert: observably an empty inbox, not an error
	require.NoError(t, err)
	assert.Nil(t, updated)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestListMessages_MalformedAddress(t *testing.T) {
	svc := newTestService(t, queryHandler(t, map[string]any{}))
	mailbox := &models.Mailbox{ID: "x", Address: "no-at-sign", Provider: ProviderID}

	_, _, err := svc.ListMessages(context.Background(), mailbox)

	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrIncompleteMailbox))
}

func TestGetMessage_PropagatesNotFound(t *testing.T) {
	// read paths for a single message do not degrade
	svc := newTestService(t, queryHandler(t, map[string]any{}))
	mailbox := &models.Mailbox{ID: "abc@1secmail.com", Address: "abc@1secmail.com", Provider: ProviderID}

	_, _, err := svc.GetMessage(context.Background(), mailbox, "101")

	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrMessageNotFound))
}

func TestGetMessage_BuildsAttachmentDownloadURLs(t *testing.T) {
	// Arrange
	svc := newTestService(t, queryHandler(t, map[string]any{
		"readMessage": map[string]any{
			"id":       101,
			"from":     "sender@example.com",
			"subject":  "with attachment",
			"date":     "2025-06-01 11:00:00",
			"textBody": "see attached",
			"attachments": []map[string]any{
				{"filename": "report.pdf", "contentType": "application/pdf", "size": 2048},
			},
		},
	}))
	mailbox := &models.Mailbox{ID: "abc@1secmail.com", Address: "abc@1secmail.com", Provider: ProviderID}

	// Act
	detail, _, err := svc.GetMessage(context.Background(), mailbox, "101")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "101", detail.ID)
	assert.Equal(t, "see attached", detail.Text)
	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, "report.pdf", detail.Attachments[0].Filename)
	assert.Contains(t, detail.Attachments[0].URL, "action=download")
	assert.Contains(t, detail.Attachments[0].URL, "file=report.pdf")
	assert.Contains(t, detail.Attachments[0].URL, "login=abc")
}

func TestDeleteMailbox_NoOp(t *testing.T) {
	svc := newTestService(t, queryHandler(t, map[string]any{}))
	mailbox := &models.Mailbox{ID: "abc@1secmail.com", Address: "abc@1secmail.com", Provider: ProviderID}

	assert.NoError(t, svc.DeleteMailbox(context.Background(), mailbox))
}
