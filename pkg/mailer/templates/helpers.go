package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/videotube-api/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithChanges(ch map[string]string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, username, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Username:       username,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}
	if username != "" {
		d.ChannelURL = strings.TrimRight(cfg.AppURL, "/") + "/c/" + username
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, username, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, username, email, opts...))
}

func NewPasswordChangedData(cfg *config.Config, name, username, email string, opts ...Option) map[string]any {
	opts = append([]Option{WithTime(time.Now())}, opts...)
	return ToMap(NewBaseEmailData(cfg, PasswordChanged, name, username, email, opts...))
}

func NewAccountUpdatedData(cfg *config.Config, name, username, email string, changes map[string]string, opts ...Option) map[string]any {
	opts = append([]Option{WithChanges(changes), WithTime(time.Now())}, opts...)
	return ToMap(NewBaseEmailData(cfg, AccountUpdated, name, username, email, opts...))
}
