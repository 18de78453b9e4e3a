package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rowjay/influx-utility/internal/config"
)

// IsS3URL reports whether the validation target names an object in S3
// rather than a local path.
func IsS3URL(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// Fetch downloads s3://bucket/key to a scratch directory and returns the
// local path together with a cleanup function removing the download.
func Fetch(ctx context.Context, cfg config.S3Store, rawURL string) (string, func(), error) {
	bucket, key, err := splitURL(rawURL)
	if err != nil {
		return "", nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return "", nil, err
	}

	dir, err := os.MkdirTemp("", "influx-validate-s3-")
	if err != nil {
		return "", nil, fmt.Errorf("create download dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	local := filepath.Join(dir, filepath.Base(key))
	if err := client.FGetObject(ctx, bucket, key, local, minio.GetObjectOptions{}); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	return local, cleanup, nil
}

func splitURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 url: %s", rawURL)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 url is missing an object key: %s", rawURL)
	}
	return u.Host, key, nil
}

func newClient(cfg config.S3Store) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3 endpoint is required for s3:// targets")
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.TLSInsecureSkip {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
		BucketLookup: func() minio.BucketLookupType {
			if cfg.ForcePathStyle {
				return minio.BucketLookupPath
			}
			return minio.BucketLookupDNS
		}(),
	})
}
