package mailer

// Service delivers one-time codes to visitors. Delivery failure is
// surfaced to the caller as retryable; the stored code is left in place
// and a resend simply issues a fresh one.
type Service interface {
	SendOTPEmail(toEmail, code string) error
}
