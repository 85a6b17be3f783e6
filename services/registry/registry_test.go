package registry

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/models"
)

type stubProvider struct {
	id         string
	enabled    bool
	domains    []string
	domainsErr error
}

func (s *stubProvider) ID() string    { return s.id }
func (s *stubProvider) Label() string { return s.id }
func (s *stubProvider) Enabled() bool { return s.enabled }

func (s *stubProvider) Domains(ctx context.Context) ([]string, error) {
	return s.domains, s.domainsErr
}

func (s *stubProvider) ListMailboxes(ctx context.Context) ([]models.Mailbox, error) {
	return []models.Mailbox{}, nil
}

func (s *stubProvider) CreateMailbox(ctx context.Context, local, domain string) (*models.Mailbox, error) {
	return nil, er.ErrProviderUnavailable
}

func (s *stubProvider) ListMessages(ctx context.Context, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error) {
	return []models.MessageSummary{}, nil, nil
}

func (s *stubProvider) GetMessage(ctx context.Context, mailbox *models.Mailbox, messageID string) (*models.MessageDetail, *models.Mailbox, error) {
	return nil, nil, er.ErrMessageNotFound
}

func (s *stubProvider) GetAttachment(ctx context.Context, mailbox *models.Mailbox, messageID, filename string) (io.ReadCloser, string, error) {
	return nil, "", er.ErrAttachmentNotFound
}

func (s *stubProvider) DeleteMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	return nil
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestResolve_RoundRobinIsFair(t *testing.T) {
	// Arrange
	a := &stubProvider{id: "a", enabled: true}
	b := &stubProvider{id: "b", enabled: true}
	c := &stubProvider{id: "c", enabled: true}
	reg := NewRegistry(getLogger(), a, b, c)

	// Act
	counts := map[string]int{}
	for i := 0; i < 9; i++ {
		p, err := reg.Resolve("")
		require.NoError(t, err)
		counts[p.ID()]++
	}

	// Assert
	assert.Equal(t, 3, counts["a"])
	assert.Equal(t, 3, counts["b"])
	assert.Equal(t, 3, counts["c"])
}

func TestResolve_PreferredDoesNotAdvanceCursor(t *testing.T) {
	// Arrange
	a := &stubProvider{id: "a", enabled: true}
	b := &stubProvider{id: "b", enabled: true}
	reg := NewRegistry(getLogger(), a, b)

	first, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "a", first.ID())

	// Act: preferred lookups in between must not move the cursor
	for i := 0; i < 5; i++ {
		p, err := reg.Resolve("a")
		require.NoError(t, err)
		assert.Equal(t, "a", p.ID())
	}
	next, err := reg.Resolve("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID())
}

func TestResolve_UnknownPreferredFallsBack(t *testing.T) {
	a := &stubProvider{id: "a", enabled: true}
	reg := NewRegistry(getLogger(), a)

	p, err := reg.Resolve("no-such-provider")

	require.NoError(t, err)
	assert.Equal(t, "a", p.ID())
}

func TestResolve_DisabledPreferredFallsBack(t *testing.T) {
	a := &stubProvider{id: "a", enabled: true}
	b := &stubProvider{id: "b", enabled: false}
	reg := NewRegistry(getLogger(), a, b)

	p, err := reg.Resolve("b")

	require.NoError(t, err)
	assert.Equal(t, "a", p.ID())
}

func TestResolve_NoActiveProviders(t *testing.T) {
	a := &stubProvider{id: "a", enabled: false}
	reg := NewRegistry(getLogger(), a)

	p, err := reg.Resolve("")

	assert.Nil(t, p)
	assert.True(t, errors.Is(err, er.ErrNoActiveProviders))
}

func TestActive_FiltersDisabled(t *testing.T) {
	a := &stubProvider{id: "a", enabled: true}
	b := &stubProvider{id: "b", enabled: false}
	reg := NewRegistry(getLogger(), a, b)

	active := reg.Active()

	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID())
	assert.Len(t, reg.Providers(), 2)
}

func TestCatalogue_DegradesFailingAdapter(t *testing.T) {
	// Arrange
	a := &stubProvider{id: "a", enabled: true, domains: []string{"a.example"}}
	b := &stubProvider{id: "b", enabled: true, domainsErr: errors.New("upstream down")}
	reg := NewRegistry(getLogger(), a, b)

	// Act
	descriptors, byProvider := reg.Catalogue(context.Background())

	// Assert: the failing adapter still appears, with an empty domain list
	require.Len(t, descriptors, 2)
	assert.Equal(t, []string{"a.example"}, byProvider["a"])
	assert.Equal(t, []string{}, byProvider["b"])
}
