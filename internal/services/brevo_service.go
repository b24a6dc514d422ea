package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"financial-mirror/internal/models"
	"financial-mirror/pkg/logging"

	brevo "github.com/getbrevo/brevo-go/lib"
)

const defaultInviteTimeout = 10 * time.Second

// InviteLimiter grants at most one invite per email per cooldown.
type InviteLimiter interface {
	AcquireInviteSlot(ctx context.Context, email string, cooldown time.Duration) (bool, error)
	ReleaseInviteSlot(ctx context.Context, email string) error
}

// BrevoOptions configures the signup invitation mail.
type BrevoOptions struct {
	APIKey    string
	FromEmail string
	FromName  string
	AppName   string
	SignupURL string
	Cooldown  time.Duration
	Limiter   InviteLimiter
	// BasePath overrides the Brevo API endpoint.
	BasePath   string
	HTTPClient *http.Client
}

// BrevoService sends signup invitations through Brevo transactional email.
type BrevoService struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
	appName   string
	signupURL string
	cooldown  time.Duration
	limiter   InviteLimiter
}

// NewBrevoService creates a Brevo client authenticated with opts.APIKey.
func NewBrevoService(opts BrevoOptions) *BrevoService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", opts.APIKey)
	if opts.BasePath != "" {
		cfg.BasePath = opts.BasePath
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &BrevoService{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: opts.FromEmail,
		fromName:  opts.FromName,
		appName:   opts.AppName,
		signupURL: opts.SignupURL,
		cooldown:  opts.Cooldown,
		limiter:   opts.Limiter,
	}
}

// InviteBuyer emails a buyer who paid before creating an account. Repeated
// deliveries for the same buyer are throttled by the limiter when one is set.
func (s *BrevoService) InviteBuyer(ctx context.Context, email string) error {
	to := models.NormalizeEmail(email)
	if to == "" {
		return nil
	}

	throttled := s.limiter != nil && s.cooldown > 0
	if throttled {
		ok, err := s.limiter.AcquireInviteSlot(ctx, to, s.cooldown)
		if err != nil {
			return err
		}
		if !ok {
			logging.Debugf("Signup invite to %s skipped, sent recently", to)
			return nil
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, defaultInviteTimeout)
	defer cancel()

	_, resp, err := s.client.TransactionalEmailsApi.SendTransacEmail(sendCtx, s.inviteEmail(to))
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		// Nothing was sent, so the next delivery may try again.
		if throttled {
			if releaseErr := s.limiter.ReleaseInviteSlot(ctx, to); releaseErr != nil {
				logging.Warnf("Invite slot for %s not released: %v", to, releaseErr)
			}
		}
		return fmt.Errorf("brevo API error (status %d): %w", status, err)
	}

	logging.Infof("Signup invite sent to %s", to)
	return nil
}

func (s *BrevoService) inviteEmail(to string) brevo.SendSmtpEmail {
	subject := fmt.Sprintf("Your %s access is waiting", s.appName)

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<title>%s</title>
		</head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px; text-align: center;">
				<h1 style="color: #333; margin-bottom: 20px;">Thanks for your purchase</h1>
				<p style="color: #666; font-size: 16px;">Create your %s account with this email address to unlock your subscription.</p>
				<a href="%s" style="display: inline-block; background-color: #007bff; color: white; padding: 14px 28px; border-radius: 8px; text-decoration: none; margin: 20px 0;">Create account</a>
				<p style="color: #999; font-size: 12px; margin-top: 30px;">If you did not make this purchase, you can ignore this email.</p>
			</div>
		</body>
		</html>
	`, subject, s.appName, s.signupURL)

	textContent := fmt.Sprintf(`
		Thanks for your purchase

		Create your %s account with this email address to unlock your subscription:
		%s

		If you did not make this purchase, you can ignore this email.
	`, s.appName, s.signupURL)

	return brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.fromName,
			Email: s.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: to},
		},
		Subject:     subject,
		HtmlContent: htmlContent,
		TextContent: textContent,
		Tags:        []string{"signup-invite"},
	}
}
