package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
)

// =============================================================================
// HELPERS
// =============================================================================

type captured struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (c *captured) add(r *http.Request, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, r)
	c.bodies = append(c.bodies, body)
}

func (c *captured) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func newSink(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.add(r, string(body))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func sampleAlert() alerts.Alert {
	return alerts.Alert{
		ID:      "a-1",
		Rule:    alerts.RuleFailover,
		Key:     "failover_to_green",
		Message: "*Failover Detected*: blue → green",
		FiredAt: time.Now(),
	}
}

// =============================================================================
// WEBHOOK
// =============================================================================

func TestWebhook_PostsPrefixedText(t *testing.T) {
	srv, sink := newSink(t, http.StatusOK)
	metrics := monitoring.NewMetricsCollector()

	wh := notify.NewWebhook(notify.Config{WebhookURL: srv.URL, Prefix: "from: @ops"},
		notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))
	wh.Notify(sampleAlert())

	require.Equal(t, 1, sink.count())
	assert.Equal(t, http.MethodPost, sink.requests[0].Method)
	assert.Equal(t, "application/json", sink.requests[0].Header.Get("Content-Type"))
	assert.Equal(t, "from: @ops | *Failover Detected*: blue → green", gjson.Get(sink.bodies[0], "text").String())
	assert.Equal(t, int64(1), metrics.Stats()["notify_sent"])
}

func TestWebhook_BodyWithoutPrefix(t *testing.T) {
	wh := notify.NewWebhook(notify.Config{WebhookURL: "http://example.invalid"})

	body, err := wh.Body(alerts.Alert{Message: "line one\n\"quoted\""})
	require.NoError(t, err)
	assert.Equal(t, "line one\n\"quoted\"", gjson.GetBytes(body, "text").String())
}

func TestWebhook_DisabledIsNoop(t *testing.T) {
	metrics := monitoring.NewMetricsCollector()
	wh := notify.NewWebhook(notify.Config{}, notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))

	wh.Notify(sampleAlert())

	assert.Equal(t, int64(0), metrics.Stats()["notify_sent"])
	assert.Equal(t, int64(0), metrics.Stats()["notify_failed"])
}

func TestWebhook_ErrorStatusIsSwallowed(t *testing.T) {
	srv, sink := newSink(t, http.StatusInternalServerError)
	metrics := monitoring.NewMetricsCollector()

	wh := notify.NewWebhook(notify.Config{WebhookURL: srv.URL},
		notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))
	wh.Notify(sampleAlert())

	assert.Equal(t, 1, sink.count(), "exactly one attempt, no retry")
	assert.Equal(t, int64(1), metrics.Stats()["notify_failed"])

	status, err := wh.Send(context.Background(), sampleAlert())
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestWebhook_TimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	metrics := monitoring.NewMetricsCollector()

	wh := notify.NewWebhook(notify.Config{WebhookURL: srv.URL, Timeout: 50 * time.Millisecond},
		notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))

	start := time.Now()
	wh.Notify(sampleAlert())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int64(1), metrics.Stats()["notify_failed"])
}

func TestWebhook_UnreachableIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	metrics := monitoring.NewMetricsCollector()

	wh := notify.NewWebhook(notify.Config{WebhookURL: url, Timeout: time.Second},
		notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))
	wh.Notify(sampleAlert())

	assert.Equal(t, int64(1), metrics.Stats()["notify_failed"])
}

// =============================================================================
// SIGV4
// =============================================================================

func staticCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", Source: "test"}, nil
	})
}

func TestWebhook_SignsRequests(t *testing.T) {
	srv, sink := newSink(t, http.StatusOK)
	signer := notify.NewSignerFromCredentials(staticCredentials(), "eu-west-1", "")

	assert.Equal(t, "eu-west-1", signer.Region())
	assert.Equal(t, notify.DefaultService, signer.Service())

	wh := notify.NewWebhook(notify.Config{WebhookURL: srv.URL}, notify.WithSigner(signer))
	_, err := wh.Send(context.Background(), sampleAlert())
	require.NoError(t, err)

	require.Equal(t, 1, sink.count())
	auth := sink.requests[0].Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 "), auth)
	assert.Contains(t, auth, "Credential=AKIDEXAMPLE/")
	assert.Contains(t, auth, "/eu-west-1/execute-api/aws4_request")
	assert.NotEmpty(t, sink.requests[0].Header.Get("X-Amz-Date"))
}

func TestWebhook_SignerFailureIsSwallowed(t *testing.T) {
	srv, sink := newSink(t, http.StatusOK)
	metrics := monitoring.NewMetricsCollector()
	broken := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no credentials")
	})

	wh := notify.NewWebhook(notify.Config{WebhookURL: srv.URL},
		notify.WithSigner(notify.NewSignerFromCredentials(broken, "", "lambda")),
		notify.WithFlagger(monitoring.NewFlagger(nil, metrics)))
	wh.Notify(sampleAlert())

	assert.Equal(t, 0, sink.count())
	assert.Equal(t, int64(1), metrics.Stats()["notify_failed"])
}

func TestNewSigner_FromEnvironment(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	signer, err := notify.NewSigner(context.Background(), notify.SigV4Config{Enabled: true, Region: "ap-south-1", Service: "lambda"})
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", signer.Region())
	assert.Equal(t, "lambda", signer.Service())
}
