package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/sagar7778/emailtemp/config"
	"github.com/sagar7778/emailtemp/interfaces"
	er "github.com/sagar7778/emailtemp/internal/errors"
	"github.com/sagar7778/emailtemp/internal/models"
	"github.com/sagar7778/emailtemp/internal/sanitize"
	"github.com/sagar7778/emailtemp/internal/tracing"
	"github.com/sagar7778/emailtemp/internal/utils"
)

const ProviderID = "mailtm"

// tokenSafetyMargin is how close to expiry a token may get before the next
// authenticated call re-authenticates first.
const tokenSafetyMargin = 60 * time.Second

// Mail.tm API: https://docs.mail.tm
type mailTmService struct {
	cfg        *config.MailTmConfig
	httpClient *http.Client

	// secrets caches credential state keyed by the provider-side account id,
	// so redacted mailboxes carrying only a SecretRef can be re-authenticated.
	secretsMutex sync.RWMutex
	secrets      map[string]*models.MailboxSecret

	// now is swappable in tests
	now func() time.Time
}

func NewMailTmService(cfg *config.MailTmConfig, timeout time.Duration) interfaces.MailProvider {
	return &mailTmService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		secrets:    make(map[string]*models.MailboxSecret),
		now:        time.Now,
	}
}

func (s *mailTmService) ID() string {
	return ProviderID
}

func (s *mailTmService) Label() string {
	return "Mail.tm"
}

func (s *mailTmService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.BaseURL != ""
}

type hydraDomains struct {
	Member []struct {
		ID     string `json:"id"`
		Domain string `json:"domain"`
	} `json:"hydra:member"`
}

func (s *mailTmService) Domains(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.Domains")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	var result hydraDomains
	if err := s.doJSON(ctx, http.MethodGet, "/domains", "", nil, &result); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	domains := make([]string, 0, len(result.Member))
	for _, d := range result.Member {
		domains = append(domains, d.Domain)
	}
	span.LogFields(tracingLog.Int("domain_count", len(domains)))
	return domains, nil
}

// ListMailboxes is a capability gap: Mail.tm scopes accounts to their own
// token, so there is nothing to enumerate.
func (s *mailTmService) ListMailboxes(ctx context.Context) ([]models.Mailbox, error) {
	return []models.Mailbox{}, nil
}

type accountResponse struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (s *mailTmService) CreateMailbox(ctx context.Context, local, domain string) (*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.CreateMailbox")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	if local == "" {
		local = utils.RandomLocalPart()
	}
	if domain == "" {
		domains, err := s.Domains(ctx)
		if err != nil || len(domains) == 0 {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(er.ErrProviderUnavailable, "mailtm: no domain available")
		}
		domain = domains[0]
	}
	address := utils.ComposeAddress(local, domain)
	password := utils.RandomPassword()

	var account accountResponse
	body := map[string]string{"address": address, "password": password}
	if err := s.doJSON(ctx, http.MethodPost, "/accounts", "", body, &account); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	token, expires, err := s.fetchToken(ctx, address, password)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	secret := &models.MailboxSecret{
		ID:           account.ID,
		Password:     password,
		Token:        token,
		TokenExpires: expires,
	}
	s.storeSecret(secret)

	tracing.TagMailbox(span, account.ID)
	return &models.Mailbox{
		ID:        account.ID,
		Address:   address,
		CreatedAt: s.now().UTC(),
		Provider:  ProviderID,
		Secret:    secret,
	}, nil
}

type hydraMessages struct {
	Member []messageResponse `json:"hydra:member"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From struct {
		Address string `json:"address"`
	} `json:"from"`
	Subject     string `json:"subject"`
	Intro       string `json:"intro"`
	Seen        bool   `json:"seen"`
	CreatedAt   string `json:"createdAt"`
	Text        string `json:"text"`
	HTML        string `json:"html"`
	Attachments []struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	} `json:"attachments"`
}

func (s *mailTmService) ListMessages(ctx context.Context, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.ListMessages")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	updated, secret, err := s.authorize(ctx, mailbox)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	var result hydraMessages
	if err := s.doJSON(ctx, http.MethodGet, "/messages", secret.Token, nil, &result); err != nil {
		tracing.TraceErr(span, err)
		return nil, updated, err
	}

	summaries := make([]models.MessageSummary, 0, len(result.Member))
	for _, msg := range result.Member {
		summaries = append(summaries, models.MessageSummary{
			ID:      msg.ID,
			From:    msg.From.Address,
			Subject: msg.Subject,
			Intro:   msg.Intro,
			Date:    msg.CreatedAt,
			Unread:  !msg.Seen,
		})
	}
	span.LogFields(tracingLog.Int("message_count", len(summaries)))
	return summaries, updated, nil
}

func (s *mailTmService) GetMessage(ctx context.Context, mailbox *models.Mailbox, messageID string) (*models.MessageDetail, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.GetMessage")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	updated, secret, err := s.authorize(ctx, mailbox)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	var msg messageResponse
	if err := s.doJSON(ctx, http.MethodGet, "/messages/"+messageID, secret.Token, nil, &msg); err != nil {
		tracing.TraceErr(span, err)
		return nil, updated, err
	}

	detail := &models.MessageDetail{
		MessageSummary: models.MessageSummary{
			ID:      msg.ID,
			From:    msg.From.Address,
			Subject: msg.Subject,
			Intro:   utils.FirstNonEmpty(msg.Intro, sanitize.IntroFromBody(msg.Text, msg.HTML)),
			Date:    msg.CreatedAt,
			Unread:  !msg.Seen,
		},
		HTML: msg.HTML,
		Text: msg.Text,
	}
	for _, a := range msg.Attachments {
		detail.Attachments = append(detail.Attachments, models.Attachment{
			Filename: a.Filename,
			URL:      fmt.Sprintf("%s/attachments/%s/download", s.cfg.BaseURL, a.ID),
			Size:     a.Size,
		})
	}
	return detail, updated, nil
}

func (s *mailTmService) GetAttachment(ctx context.Context, mailbox *models.Mailbox, attachmentID, filename string) (io.ReadCloser, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.GetAttachment")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	_, secret, err := s.authorize(ctx, mailbox)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/attachments/"+attachmentID+"/download", nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+secret.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "mailtm: download attachment: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, "", errors.Wrap(er.ErrAttachmentNotFound, "mailtm: attachment "+attachmentID)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "mailtm: download attachment: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

func (s *mailTmService) DeleteMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailTmService.DeleteMailbox")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	_, secret, err := s.authorize(ctx, mailbox)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.doJSON(ctx, http.MethodDelete, "/accounts/"+secret.ID, secret.Token, nil, nil); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.secretsMutex.Lock()
	delete(s.secrets, secret.ID)
	s.secretsMutex.Unlock()
	return nil
}

// authorize resolves the credential for a mailbox and lazily re-authenticates
// when the token is within the safety margin of expiry. It returns the
// refreshed mailbox (nil when nothing changed) and the secret to use.
//
// A mailbox whose SecretRef does not correspond to any known account fails
// closed rather than silently minting a new identity.
func (s *mailTmService) authorize(ctx context.Context, mailbox *models.Mailbox) (*models.Mailbox, *models.MailboxSecret, error) {
	secret := mailbox.Secret
	if secret == nil {
		ref := ""
		if mailbox.SecretRef != nil {
			ref = mailbox.SecretRef.ID
		}
		if ref == "" {
			return nil, nil, errors.Wrap(er.ErrAuthFailed, "mailtm: mailbox carries no credential reference")
		}
		secret = s.lookupSecret(ref)
		if secret == nil {
			return nil, nil, errors.Wrap(er.ErrAuthFailed, "mailtm: unknown credential reference")
		}
	}

	if s.now().Add(tokenSafetyMargin).Before(secret.TokenExpires) {
		return nil, secret, nil
	}

	token, expires, err := s.fetchToken(ctx, mailbox.Address, secret.Password)
	if err != nil {
		return nil, nil, err
	}

	refreshed := &models.MailboxSecret{
		ID:           secret.ID,
		Password:     secret.Password,
		Token:        token,
		TokenExpires: expires,
	}
	s.storeSecret(refreshed)

	updated := &models.Mailbox{
		ID:        mailbox.ID,
		Address:   mailbox.Address,
		CreatedAt: mailbox.CreatedAt,
		Provider:  mailbox.Provider,
		Secret:    refreshed,
	}
	return updated, refreshed, nil
}

func (s *mailTmService) fetchToken(ctx context.Context, address, password string) (string, time.Time, error) {
	var token tokenResponse
	body := map[string]string{"address": address, "password": password}
	if err := s.doJSON(ctx, http.MethodPost, "/token", "", body, &token); err != nil {
		return "", time.Time{}, err
	}

	expires, err := time.Parse(time.RFC3339, token.ExpiresAt)
	if err != nil {
		// Some deployments omit the expiry; assume a short-lived token so the
		// next call refreshes again.
		expires = s.now().Add(tokenSafetyMargin)
	}
	return token.Token, expires, nil
}

func (s *mailTmService) lookupSecret(id string) *models.MailboxSecret {
	s.secretsMutex.RLock()
	defer s.secretsMutex.RUnlock()
	return s.secrets[id]
}

func (s *mailTmService) storeSecret(secret *models.MailboxSecret) {
	s.secretsMutex.Lock()
	defer s.secretsMutex.Unlock()
	s.secrets[secret.ID] = secret
}

// doJSON performs one API call, decoding the response into out when out is
// not nil. Transport failures and timeouts surface identically as provider
// unavailability.
func (s *mailTmService) doJSON(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "mailtm: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(er.ErrMessageNotFound, "mailtm: %s %s", method, path)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Wrapf(er.ErrAuthFailed, "mailtm: %s %s", method, path)
	case resp.StatusCode >= 400:
		return errors.Wrapf(er.ErrProviderUnavailable, "mailtm: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "mailtm: %s %s: decode: %v", method, path, err)
	}
	return nil
}
