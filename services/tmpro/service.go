package tmpro

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
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

const ProviderID = "tmpro"

// Paid REST backend with a tenant-wide API key. The key is adapter
// configuration, never mailbox state, so mailboxes carry no secret and there
// is nothing to redact. The adapter stays disabled until a key is configured.
type tmProService struct {
	cfg        *config.TmProConfig
	httpClient *http.Client
}

func NewTmProService(cfg *config.TmProConfig, timeout time.Duration) interfaces.MailProvider {
	return &tmProService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *tmProService) ID() string {
	return ProviderID
}

func (s *tmProService) Label() string {
	return "TempMail Pro"
}

func (s *tmProService) Enabled() bool {
	return s.cfg.IsConfigured()
}

type domainsResponse struct {
	Domains []string `json:"domains"`
}

func (s *tmProService) Domains(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.Domains")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	var result domainsResponse
	if err := s.doJSON(ctx, http.MethodGet, "/domains", nil, &result); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogFields(tracingLog.Int("domain_count", len(result.Domains)))
	return result.Domains, nil
}

type mailboxResponse struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

type mailboxListResponse struct {
	Mailboxes []mailboxResponse `json:"mailboxes"`
}

func (s *tmProService) ListMailboxes(ctx context.Context) ([]models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.ListMailboxes")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	var result mailboxListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/mailboxes", nil, &result); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	mailboxes := make([]models.Mailbox, 0, len(result.Mailboxes))
	for _, mb := range result.Mailboxes {
		mailboxes = append(mailboxes, models.Mailbox{
			ID:        mb.ID,
			Address:   mb.Address,
			CreatedAt: mb.CreatedAt,
			Provider:  ProviderID,
		})
	}
	return mailboxes, nil
}

func (s *tmProService) CreateMailbox(ctx context.Context, local, domain string) (*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.CreateMailbox")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	if local == "" {
		local = utils.RandomLocalPart()
	}

	var mb mailboxResponse
	body := map[string]string{"local": local, "domain": domain}
	if err := s.doJSON(ctx, http.MethodPost, "/mailboxes", body, &mb); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagMailbox(span, mb.ID)
	return &models.Mailbox{
		ID:        mb.ID,
		Address:   mb.Address,
		CreatedAt: mb.CreatedAt,
		Provider:  ProviderID,
	}, nil
}

type messageResponse struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	Subject     string `json:"subject"`
	Intro       string `json:"intro"`
	Date        string `json:"date"`
	Unread      bool   `json:"unread"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
	Attachments []struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
		Size     int64  `json:"size"`
	} `json:"attachments"`
}

type messageListResponse struct {
	Messages []messageResponse `json:"messages"`
}

func (s *tmProService) ListMessages(ctx context.Context, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.ListMessages")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	var result messageListResponse
	if err := s.doJSON(ctx, http.MethodGet, "/mailboxes/"+mailbox.ID+"/messages", nil, &result); err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	summaries := make([]models.MessageSummary, 0, len(result.Messages))
	for _, msg := range result.Messages {
		summaries = append(summaries, models.MessageSummary{
			ID:      msg.ID,
			From:    msg.From,
			Subject: msg.Subject,
			Intro:   msg.Intro,
			Date:    msg.Date,
			Unread:  msg.Unread,
		})
	}
	span.LogFields(tracingLog.Int("message_count", len(summaries)))
	return summaries, nil, nil
}

func (s *tmProService) GetMessage(ctx context.Context, mailbox *models.Mailbox, messageID string) (*models.MessageDetail, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.GetMessage")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	var msg messageResponse
	if err := s.doJSON(ctx, http.MethodGet, "/mailboxes/"+mailbox.ID+"/messages/"+messageID, nil, &msg); err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	detail := &models.MessageDetail{
		MessageSummary: models.MessageSummary{
			ID:      msg.ID,
			From:    msg.From,
			Subject: msg.Subject,
			Intro:   utils.FirstNonEmpty(msg.Intro, sanitize.IntroFromBody(msg.Text, msg.HTML)),
			Date:    msg.Date,
			Unread:  msg.Unread,
		},
		HTML: msg.HTML,
		Text: msg.Text,
	}
	for _, a := range msg.Attachments {
		detail.Attachments = append(detail.Attachments, models.Attachment{
			Filename: a.Filename,
			URL:      a.URL,
			Size:     a.Size,
		})
	}
	return detail, nil, nil
}

func (s *tmProService) GetAttachment(ctx context.Context, mailbox *models.Mailbox, messageID, filename string) (io.ReadCloser, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.GetAttachment")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	path := "/mailboxes/" + mailbox.ID + "/messages/" + messageID + "/attachments/" + filename
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path, nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "tmpro: download attachment: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, "", errors.Wrap(er.ErrAttachmentNotFound, "tmpro: attachment "+filename)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "tmpro: download attachment: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

func (s *tmProService) DeleteMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TmProService.DeleteMailbox")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	if err := s.doJSON(ctx, http.MethodDelete, "/mailboxes/"+mailbox.ID, nil, nil); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (s *tmProService) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if !s.Enabled() {
		return errors.Wrap(er.ErrProviderDisabled, "tmpro: api key not configured")
	}

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
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "tmpro: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(er.ErrMessageNotFound, "tmpro: %s %s", method, path)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Wrapf(er.ErrAuthFailed, "tmpro: %s %s", method, path)
	case resp.StatusCode >= 400:
		return errors.Wrapf(er.ErrProviderUnavailable, "tmpro: %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "tmpro: %s %s: decode: %v", method, path, err)
	}
	return nil
}
