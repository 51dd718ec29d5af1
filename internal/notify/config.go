// Package notify delivers fired alerts to the chat webhook.
//
// DESIGN: Delivery is best-effort and never reaches back into the caller:
//   - Webhook:    one POST per alert, short timeout, failures logged and dropped
//   - Dispatcher: bounded queue + single worker so a slow sink never stalls
//     event processing; alerts beyond the queue are discarded
//   - Signer:     optional AWS SigV4 signing for IAM-protected endpoints
package notify

import "time"

// Defaults applied when the corresponding field is zero.
const (
	DefaultTimeout   = 5 * time.Second
	DefaultQueueSize = 64
	DefaultService   = "execute-api"
)

// Config contains notification settings.
type Config struct {
	WebhookURL string        `yaml:"webhook_url"` // empty disables delivery
	Prefix     string        `yaml:"prefix"`      // label prepended to every message
	Timeout    time.Duration `yaml:"timeout"`     // per-delivery timeout
	QueueSize  int           `yaml:"queue_size"`  // dispatcher backlog
	SigV4      SigV4Config   `yaml:"sigv4"`
}

// SigV4Config enables AWS request signing for the webhook.
type SigV4Config struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`  // empty uses the AWS default chain
	Service string `yaml:"service"` // signing name, e.g. execute-api or lambda
}

// Enabled reports whether a destination is configured.
func (c Config) Enabled() bool {
	return c.WebhookURL != ""
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
