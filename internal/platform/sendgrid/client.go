package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/devcamper-backend/internal/platform/httpx"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

const defaultBaseURL = "https://api.sendgrid.com"

var (
	ErrNoRecipient = errors.New("sendgrid: recipient required")
	ErrNoSubject   = errors.New("sendgrid: subject required")
	ErrNoBody      = errors.New("sendgrid: text content required")
)

// Client delivers transactional mail through the v3 mail/send endpoint.
type Client interface {
	Send(ctx context.Context, msg SendEmailRequest) error
}

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	ReplyTo   string
	// Sandbox asks SendGrid to validate the payload without delivering it.
	Sandbox    bool
	Timeout    time.Duration
	MaxRetries int
}

func (cfg Config) normalized() (Config, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.FromEmail = strings.TrimSpace(cfg.FromEmail)
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if cfg.FromEmail == "" {
		return cfg, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	return cfg, nil
}

type SendEmailRequest struct {
	To      string
	ToName  string
	Subject string
	Text    string
	// Category tags the message for SendGrid's activity feed.
	Category string
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	return &client{
		log:  log.With("client", "SendGridClient", "sandbox", cfg.Sandbox),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type message struct {
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	From         address       `json:"from"`
	ReplyTo      *address      `json:"reply_to,omitempty"`
	Subject      string        `json:"subject"`
	Content      []content     `json:"content"`
	Categories   []string      `json:"categories,omitempty"`
	MailSettings *mailSettings `json:"mail_settings,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSettings struct {
	SandboxMode struct {
		Enable bool `json:"enable"`
	} `json:"sandbox_mode"`
}

func (c *client) buildMessage(req SendEmailRequest) (*message, error) {
	to := strings.TrimSpace(req.To)
	subject := strings.TrimSpace(req.Subject)
	text := strings.TrimSpace(req.Text)
	switch {
	case to == "":
		return nil, ErrNoRecipient
	case subject == "":
		return nil, ErrNoSubject
	case text == "":
		return nil, ErrNoBody
	}

	msg := &message{
		From:    address{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject: subject,
		Content: []content{{Type: "text/plain", Value: text}},
	}
	msg.Personalizations = make([]struct {
		To []address `json:"to"`
	}, 1)
	msg.Personalizations[0].To = []address{{Email: to, Name: strings.TrimSpace(req.ToName)}}
	if replyTo := strings.TrimSpace(c.cfg.ReplyTo); replyTo != "" {
		msg.ReplyTo = &address{Email: replyTo}
	}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		msg.Categories = []string{cat}
	}
	if c.cfg.Sandbox {
		msg.MailSettings = &mailSettings{}
		msg.MailSettings.SandboxMode.Enable = true
	}
	return msg, nil
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) error {
	msg, err := c.buildMessage(req)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("sendgrid encode: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v3/mail/send"
	_, err = httpx.DoWithRetry(ctx, c.http, c.cfg.MaxRetries, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	c.log.Debug("email accepted", "subject", msg.Subject, "category", req.Category)
	return nil
}
