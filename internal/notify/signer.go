package notify

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"
)

const defaultRegion = "us-east-1"

// Signer handles AWS SigV4 signing for webhook endpoints that sit behind
// IAM authentication (API Gateway, Lambda function URLs). Credentials come
// from the standard AWS chain (environment, shared files, instance roles).
type Signer struct {
	credentials aws.CredentialsProvider
	region      string
	service     string
	signer      *v4.Signer
	now         func() time.Time
}

// NewSigner loads credentials from the default chain. It fails when no
// usable credentials are found so that a misconfiguration shows at startup.
func NewSigner(ctx context.Context, cfg SigV4Config) (*Signer, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve AWS credentials: %w", err)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("AWS credentials are empty")
	}

	region := awsCfg.Region
	if region == "" {
		region = defaultRegion
	}

	log.Info().
		Str("region", region).
		Str("service", serviceOrDefault(cfg.Service)).
		Str("access_key_prefix", creds.AccessKeyID[:min(4, len(creds.AccessKeyID))]+"...").
		Msg("webhook signer initialized")

	return NewSignerFromCredentials(awsCfg.Credentials, region, cfg.Service), nil
}

// NewSignerFromCredentials builds a signer around an explicit provider.
func NewSignerFromCredentials(provider aws.CredentialsProvider, region, service string) *Signer {
	if region == "" {
		region = defaultRegion
	}
	return &Signer{
		credentials: provider,
		region:      region,
		service:     serviceOrDefault(service),
		signer:      v4.NewSigner(),
		now:         time.Now,
	}
}

func serviceOrDefault(service string) string {
	if service == "" {
		return DefaultService
	}
	return service
}

// Region returns the signing region.
func (s *Signer) Region() string { return s.region }

// Service returns the signing name.
func (s *Signer) Service() string { return s.service }

// SignRequest signs req with SigV4. body must be the exact request body.
func (s *Signer) SignRequest(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve AWS credentials: %w", err)
	}

	payloadHash := fmt.Sprintf("%x", sha256.Sum256(body))

	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, s.service, s.region, s.now()); err != nil {
		return fmt.Errorf("sign webhook request: %w", err)
	}
	return nil
}
