package onesec

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
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

const ProviderID = "onesec"

// fallbackDomains is used when live domain discovery is unavailable and a
// default domain is needed for mailbox creation.
var fallbackDomains = []string{"1secmail.com", "1secmail.org", "1secmail.net"}

// 1secmail query API: https://www.1secmail.com/api/
// Mailboxes are pure addresses with no registration and no credentials, so
// the adapter never produces a secret and delete is a no-op.
type oneSecService struct {
	cfg        *config.OneSecConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewOneSecService(cfg *config.OneSecConfig, timeout time.Duration) interfaces.MailProvider {
	return &oneSecService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (s *oneSecService) ID() string {
	return ProviderID
}

func (s *oneSecService) Label() string {
	return "1secmail"
}

func (s *oneSecService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.BaseURL != ""
}

func (s *oneSecService) Domains(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OneSecService.Domains")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	var domains []string
	params := url.Values{"action": {"getDomainList"}}
	if err := s.doJSON(ctx, params, &domains); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogFields(tracingLog.Int("domain_count", len(domains)))
	return domains, nil
}

// ListMailboxes is a capability gap: 1secmail has no mailbox registry at all.
func (s *oneSecService) ListMailboxes(ctx context.Context) ([]models.Mailbox, error) {
	return []models.Mailbox{}, nil
}

func (s *oneSecService) CreateMailbox(ctx context.Context, local, domain string) (*models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OneSecService.CreateMailbox")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)

	if local == "" {
		local = utils.RandomLocalPart()
	}
	if domain == "" {
		domain = s.defaultDomain(ctx)
	}

	// No upstream registration step: an address exists the moment mail is
	// sent to it.
	address := utils.ComposeAddress(local, domain)
	tracing.TagMailbox(span, address)

	return &models.Mailbox{
		ID:        address,
		Address:   address,
		CreatedAt: s.now().UTC(),
		Provider:  ProviderID,
	}, nil
}

type messageSummaryResponse struct {
	ID      json.Number `json:"id"`
	From    string      `json:"from"`
	Subject string      `json:"subject"`
	Date    string      `json:"date"`
	Seen    bool        `json:"seen"`
	Intro   string      `json:"intro"`
}

// ListMessages degrades network failures to an empty list: inbox emptiness is
// observably equivalent and the next poll tick recovers.
func (s *oneSecService) ListMessages(ctx context.Context, mailbox *models.Mailbox) ([]models.MessageSummary, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OneSecService.ListMessages")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	local, domain := utils.SplitAddress(mailbox.Address)
	if local == "" {
		return nil, nil, errors.Wrap(er.ErrIncompleteMailbox, "onesec: malformed address")
	}

	var responses []messageSummaryResponse
	params := url.Values{
		"action": {"getMessages"},
		"login":  {local},
		"domain": {domain},
	}
	if err := s.doJSON(ctx, params, &responses); err != nil {
		tracing.TraceErr(span, err)
		return []models.MessageSummary{}, nil, nil
	}

	summaries := make([]models.MessageSummary, 0, len(responses))
	for _, msg := range responses {
		summaries = append(summaries, models.MessageSummary{
			ID:      msg.ID.String(),
			From:    msg.From,
			Subject: msg.Subject,
			Intro:   msg.Intro,
			Date:    msg.Date,
			Unread:  !msg.Seen,
		})
	}
	span.LogFields(tracingLog.Int("message_count", len(summaries)))
	return summaries, nil, nil
}

type messageDetailResponse struct {
	ID          json.Number `json:"id"`
	From        string      `json:"from"`
	Subject     string      `json:"subject"`
	Date        string      `json:"date"`
	TextBody    string      `json:"textBody"`
	HTMLBody    string      `json:"htmlBody"`
	Attachments []struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
	} `json:"attachments"`
}

func (s *oneSecService) GetMessage(ctx context.Context, mailbox *models.Mailbox, messageID string) (*models.MessageDetail, *models.Mailbox, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OneSecService.GetMessage")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	local, domain := utils.SplitAddress(mailbox.Address)
	if local == "" {
		return nil, nil, errors.Wrap(er.ErrIncompleteMailbox, "onesec: malformed address")
	}

	var msg messageDetailResponse
	params := url.Values{
		"action": {"readMessage"},
		"login":  {local},
		"domain": {domain},
		"id":     {messageID},
	}
	if err := s.doJSON(ctx, params, &msg); err != nil {
		tracing.TraceErr(span, err)
		return nil, nil, err
	}

	detail := &models.MessageDetail{
		MessageSummary: models.MessageSummary{
			ID:      msg.ID.String(),
			From:    msg.From,
			Subject: msg.Subject,
			Intro:   sanitize.IntroFromBody(msg.TextBody, msg.HTMLBody),
			Date:    msg.Date,
			Unread:  false,
		},
		HTML: msg.HTMLBody,
		Text: msg.TextBody,
	}
	for _, a := range msg.Attachments {
		detail.Attachments = append(detail.Attachments, models.Attachment{
			Filename: a.Filename,
			URL:      s.downloadURL(local, domain, messageID, a.Filename),
			Size:     a.Size,
		})
	}
	return detail, nil, nil
}

func (s *oneSecService) GetAttachment(ctx context.Context, mailbox *models.Mailbox, messageID, filename string) (io.ReadCloser, string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OneSecService.GetAttachment")
	defer span.Finish()
	tracing.TagComponentProvider(span)
	tracing.TagProvider(span, ProviderID)
	tracing.TagMailbox(span, mailbox.ID)

	local, domain := utils.SplitAddress(mailbox.Address)
	if local == "" {
		return nil, "", errors.Wrap(er.ErrIncompleteMailbox, "onesec: malformed address")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.downloadURL(local, domain, messageID, filename), nil)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "onesec: download attachment: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, "", errors.Wrap(er.ErrAttachmentNotFound, "onesec: attachment "+filename)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", errors.Wrapf(er.ErrProviderUnavailable, "onesec: download attachment: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

// DeleteMailbox is a capability gap: 1secmail cannot delete an address, so
// abandoning it is the whole lifecycle.
func (s *oneSecService) DeleteMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	return nil
}

func (s *oneSecService) defaultDomain(ctx context.Context) string {
	domains, err := s.Domains(ctx)
	if err == nil && len(domains) > 0 {
		return domains[0]
	}
	return fallbackDomains[0]
}

func (s *oneSecService) downloadURL(local, domain, messageID, filename string) string {
	params := url.Values{
		"action": {"download"},
		"login":  {local},
		"domain": {domain},
		"id":     {messageID},
		"file":   {filename},
	}
	return s.cfg.BaseURL + "?" + params.Encode()
}

func (s *oneSecService) doJSON(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "onesec: %s: %v", params.Get("action"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(er.ErrMessageNotFound, "onesec: %s", params.Get("action"))
	}
	if resp.StatusCode >= 400 {
		return errors.Wrapf(er.ErrProviderUnavailable, "onesec: %s: status %d", params.Get("action"), resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(er.ErrProviderUnavailable, "onesec: %s: decode: %v", params.Get("action"), err)
	}
	return nil
}
