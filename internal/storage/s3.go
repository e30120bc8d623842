// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Client is the alternative FileStore backend: uploads go to a single
// public S3-compatible bucket instead of the content repository. Path-style
// addressing is used so CEPH/Hetzner-style endpoints work.
type S3Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for uploaded files
}

// NewS3 creates the S3 file store. Returns (nil, nil) if endpoint or
// credentials are empty, letting the caller fall back to the GitHub backend.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Client{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// UploadFile stores a blob under uploads/<category>/ with a timestamped
// random name, public-read so it can be served directly.
func (c *S3Client) UploadFile(ctx context.Context, data []byte, filename, category string) (string, error) {
	category = NormalizeCategory(category)
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("uploads/%s/%d-%s%s", category, time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w: %v", key, ErrUnavailable, err)
	}

	return c.fileURL(key), nil
}

// DeleteFile removes an uploaded object. S3 deletes are idempotent, so a
// file that is already gone reports success.
func (c *S3Client) DeleteFile(ctx context.Context, fileURL string) error {
	key := c.objectKey(fileURL)

	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w: %v", key, ErrUnavailable, err)
	}
	return nil
}

// fileURL returns the public URL for an object key. Uses the configured
// public URL if set, otherwise builds a path-style URL.
func (c *S3Client) fileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// objectKey normalizes the accepted URL shapes to an object key: the
// public URL, a path-style endpoint URL, a root-relative path, or a bare
// relative path.
func (c *S3Client) objectKey(fileURL string) string {
	if c.publicURL != "" {
		if prefix := c.publicURL + "/"; strings.HasPrefix(fileURL, prefix) {
			return fileURL[len(prefix):]
		}
	}
	if prefix := c.endpoint + "/" + c.bucket + "/"; strings.HasPrefix(fileURL, prefix) {
		return fileURL[len(prefix):]
	}

	key := strings.TrimPrefix(fileURL, "/")
	if !strings.HasPrefix(key, "uploads/") {
		key = "uploads/" + key
	}
	return key
}
