package alerts

import "errors"

var (
	ErrWebhookDisabled    = errors.New("webhook notifier is disabled")
	ErrWebhookRateLimited = errors.New("webhook delivery rate limited")

	errInvalidJSON       = errors.New("invalid JSON generated")
	errWebhookStatus     = errors.New("webhook returned non-2xx status")
	errTemplateParse     = errors.New("template parsing failed")
	errTemplateExecution = errors.New("template execution failed")
)
