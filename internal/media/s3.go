package media

import (
	"context"
	"fmt"
	"path"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultPresignExpiry is how long a presigned media link stays valid.
const DefaultPresignExpiry = 1 * time.Hour

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Presigner signs GET URLs for media stored in an S3 bucket under Prefix.
type S3Presigner struct {
	client  presignAPI
	Bucket  string
	Prefix  string
	Expires time.Duration
}

// NewS3Presigner wraps an S3 presign client.
func NewS3Presigner(client *s3.PresignClient, bucket, prefix string) *S3Presigner {
	return &S3Presigner{
		client:  client,
		Bucket:  bucket,
		Prefix:  prefix,
		Expires: DefaultPresignExpiry,
	}
}

// Key returns the object key for a media file name.
func (p *S3Presigner) Key(name string) string {
	if p.Prefix == "" {
		return path.Clean(name)
	}
	return path.Join(p.Prefix, name)
}

// Sign implements Signer.
func (p *S3Presigner) Sign(ctx context.Context, name string) (string, error) {
	key := p.Key(name)
	result, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &p.Bucket, Key: &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = p.Expires
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject %s: %w", key, err)
	}
	return result.URL, nil
}
