// Package service holds the pieces of business logic shared between endpoints
package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"playtube/video-api/cloudflare"
	"playtube/video-api/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/viper"
)

const minMultipartSize = 12 << 20

// Storage is the media blob store. Handlers only ever see the public URL and
// the key needed to delete a blob later.
type Storage interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (url, key string, err error)
	Delete(ctx context.Context, key string) error
}

// R2Storage stores blobs in a Cloudflare R2 bucket fronted by a public URL.
type R2Storage struct {
	R2        *cloudflare.R2Client
	PublicURL string
}

func NewR2Storage(r2 *cloudflare.R2Client) *R2Storage {
	return &R2Storage{
		R2:        r2,
		PublicURL: strings.TrimSuffix(viper.GetString("cloudflare.public_url"), "/"),
	}
}

func (s *R2Storage) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, string, error) {
	key := util.RandStr(16) + extFor(contentType)

	input := &s3.PutObjectInput{
		Bucket:       s.R2.Bucket,
		Key:          aws.String(key),
		Body:         r,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if size > minMultipartSize {
		up := manager.NewUploader(s.R2.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = up.Upload(ctx, input)
	} else {
		input.ContentLength = aws.Int64(size)
		_, err = s.R2.C.PutObject(ctx, input)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to upload object, %w", err)
	}

	return s.PublicURL + "/" + key, key, nil
}

func (s *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := s.R2.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.R2.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}
