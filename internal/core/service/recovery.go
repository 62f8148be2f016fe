package service

import (
	"context"
	"strings"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
)

// ForgotPassword asks the backend to send a reset code to the address.
func (g *AuthGateway) ForgotPassword(ctx context.Context, email string) domain.RecoveryResult {
	resp, err := g.api.ForgotPassword(ctx, domain.NormalizeEmail(email))
	return g.recoveryResult("forgot_password", resp, err, domain.MsgForgotFailed)
}

// VerifyOTP checks a reset code before the new password is chosen.
func (g *AuthGateway) VerifyOTP(ctx context.Context, email, otp string) domain.RecoveryResult {
	resp, err := g.api.VerifyOTP(ctx, domain.NormalizeEmail(email), strings.TrimSpace(otp))
	return g.recoveryResult("verify_otp", resp, err, domain.MsgVerifyFailed)
}

// ResetPassword sets a new password using a verified reset code.
func (g *AuthGateway) ResetPassword(ctx context.Context, email, otp, password string) domain.RecoveryResult {
	resp, err := g.api.ResetPassword(ctx, domain.NormalizeEmail(email), strings.TrimSpace(otp), password)
	return g.recoveryResult("reset_password", resp, err, domain.MsgResetFailed)
}

// recoveryResult reads an {ok}-style response. An explicit ok/success flag
// wins over the status code.
func (g *AuthGateway) recoveryResult(step string, resp *ports.APIResponse, err error, fallback string) domain.RecoveryResult {
	if err != nil {
		g.log.Warn().Err(err).Str("step", step).Msg("password recovery request failed")
		return domain.RecoveryResult{Message: domain.MsgNetworkError}
	}

	ok := resp.OK()
	for _, key := range []string{"ok", "success"} {
		if flag, present := resp.Body[key].(bool); present {
			ok = flag
			break
		}
	}

	if !ok {
		return domain.RecoveryResult{Message: extractMessage(resp.Body, fallback)}
	}
	return domain.RecoveryResult{Success: true, Message: extractMessage(resp.Body, "")}
}
