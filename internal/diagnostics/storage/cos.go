package storage

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"

	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

// COSConfig holds the Tencent Cloud Object Storage settings needed to
// upload a snapshot. BucketURL is the full bucket endpoint (e.g.
// "https://my-bucket-1250000000.cos.ap-guangzhou.myqcloud.com").
type COSConfig struct {
	BucketURL string
	SecretID  string
	SecretKey string
}

// COSStorage uploads/downloads snapshots to a Tencent Cloud COS bucket.
// Used only when diagnostics.cos_enabled is set; otherwise LocalStorage
// is the default and this type is never constructed.
type COSStorage struct {
	client *cos.Client
}

// NewCOSStorage validates cfg and builds a client against it.
func NewCOSStorage(cfg COSConfig) (*COSStorage, error) {
	if cfg.BucketURL == "" {
		return nil, apperrors.New(apperrors.CodeConfig, "diagnostics.cos_bucket_url is required")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, apperrors.New(apperrors.CodeConfig, "diagnostics.cos_secret_id and cos_secret_key are required")
	}

	bucketURL, err := url.Parse(cfg.BucketURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, "parsing diagnostics.cos_bucket_url")
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})
	return &COSStorage{client: client}, nil
}

func (s *COSStorage) Upload(ctx context.Context, key string, r io.Reader) error {
	_, err := s.client.Object.Put(ctx, key, r, nil)
	return wrapIO(err, "uploading snapshot to COS")
}

func (s *COSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, wrapIO(err, "downloading snapshot from COS")
	}
	return resp.Body, nil
}

func (s *COSStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.Object.Delete(ctx, key, nil)
	return wrapIO(err, "deleting snapshot from COS")
}

func (s *COSStorage) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, wrapIO(err, "checking snapshot existence in COS")
	}
	return ok, nil
}

func (s *COSStorage) GetURL(key string) string {
	return s.client.BaseURL.BucketURL.String() + "/" + key
}
