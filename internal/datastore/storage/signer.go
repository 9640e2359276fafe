package storage

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ghaniswara/dharmasaathi/internal/config"
	"github.com/ghaniswara/dharmasaathi/internal/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL = 300 * time.Second
	MinTTL     = 60 * time.Second
	MaxTTL     = 3600 * time.Second
)

var ErrInvalidPath = errors.New("invalid storage path")

type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// IPhotoSigner turns private storage paths into time limited URLs.
type IPhotoSigner interface {
	SignURLs(ctx context.Context, paths []string) []string
	SignOptional(ctx context.Context, path string) *string
}

type Signer struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

func New(presigner Presigner, bucket string, ttl time.Duration) *Signer {
	return &Signer{presigner: presigner, bucket: bucket, ttl: ClampTTL(ttl)}
}

// NewFromConfig builds an S3 compatible presigner from STORAGE_* keys.
func NewFromConfig(ctx context.Context, cfg config.IConfig) (*Signer, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(cfg.Get("STORAGE_REGION")),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Get("STORAGE_ACCESS_KEY_ID"), cfg.Get("STORAGE_SECRET_ACCESS_KEY"), "",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load storage config")
	}

	endpoint := cfg.Get("STORAGE_ENDPOINT")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return New(s3.NewPresignClient(client), cfg.Get("STORAGE_BUCKET"), cfg.GetDuration("PHOTO_URL_TTL", DefaultTTL)), nil
}

// ClampTTL maps zero to the default and bounds everything else to [MinTTL, MaxTTL].
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl <= 0:
		return DefaultTTL
	case ttl < MinTTL:
		return MinTTL
	case ttl > MaxTTL:
		return MaxTTL
	}
	return ttl
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// ValidPath reports whether p is a relative object key inside the bucket.
func ValidPath(p string) bool {
	if strings.TrimSpace(p) == "" || p != strings.TrimSpace(p) {
		return false
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "://") || strings.Contains(p, `\`) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func (s *Signer) SignURL(ctx context.Context, path string) (string, error) {
	if !ValidPath(path) {
		return "", errors.Wrapf(ErrInvalidPath, "%q", path)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", errors.Wrap(err, "presign")
	}
	return req.URL, nil
}

// SignURLs signs each path, dropping the ones that fail and keeping input order.
func (s *Signer) SignURLs(ctx context.Context, paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		url, err := s.SignURL(ctx, p)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{"path": p, "error": err}).Warn("dropping unsignable photo path")
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// SignOptional returns nil for an empty path or any signing failure.
func (s *Signer) SignOptional(ctx context.Context, path string) *string {
	if path == "" {
		return nil
	}
	url, err := s.SignURL(ctx, path)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"path": path, "error": err}).Warn("photo url unavailable")
		return nil
	}
	return &url
}
