package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

const smsTimeout = 10 * time.Second

// SMSSender posts messages to a Twilio compatible REST endpoint
type SMSSender struct {
	baseURL    string
	accountSid string
	authToken  string
	from       string
}

type smsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewSMSSender(cfg config.SmsConfig) *SMSSender {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &SMSSender{
		baseURL:    baseURL,
		accountSid: cfg.AccountSid,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
	}
}

func (s *SMSSender) Channel() string {
	return "sms"
}

func (s *SMSSender) Send(ctx context.Context, to, _ string, body string) error {
	ctx, cancel := context.WithTimeout(ctx, smsTimeout)
	defer cancel()

	var (
		code int
		resp string
	)
	err := gout.POST(fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSid)).
		WithContext(ctx).
		SetBasicAuth(s.accountSid, s.authToken).
		SetHeader(gout.H{"Accept": "application/json"}).
		SetWWWForm(gout.H{
			"To":   to,
			"From": s.from,
			"Body": body,
		}).
		BindBody(&resp).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrapf(domain.ErrNotification, "sms request: %v", err)
	}
	if code >= 400 {
		msg := strings.TrimSpace(resp)
		var e smsError
		if jsoniter.UnmarshalFromString(resp, &e) == nil && e.Message != "" {
			msg = e.Message
		}
		return errors.Wrapf(domain.ErrNotification, "sms gateway returned %d: %s", code, msg)
	}
	return nil
}
