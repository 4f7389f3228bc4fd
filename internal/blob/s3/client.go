// Package s3 backs the blob store with an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"annotation-service/internal/blob"
	"annotation-service/internal/config"
	apperrors "annotation-service/pkg/errors"
)

const (
	errPutBlobMsg    = "failed to store blob"
	errOpenBlobMsg   = "failed to open blob"
	errDeleteBlobMsg = "failed to delete blob"
	errPresignMsg    = "failed to presign upload URL"
)

type Client struct {
	bucketName string
	svc        *s3.S3
}

var _ blob.Store = (*Client)(nil)

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		bucketName: cfg.Bucket,
		svc:        s3.New(sess),
	}, nil
}

func (c *Client) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	// Buffer the upload: PutObject wants a seekable body and the byte
	// count feeds the empty-upload check.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, apperrors.Storage(errPutBlobMsg, err)
	}

	_, err = c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, apperrors.Storage(errPutBlobMsg, err)
	}

	return n, nil
}

func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, *blob.Info, error) {
	resp, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, apperrors.Storage(errOpenBlobMsg, err)
	}

	info := &blob.Info{}
	if resp.ContentType != nil {
		info.ContentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		info.Size = *resp.ContentLength
	}

	return resp.Body, info, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.Storage(errDeleteBlobMsg, err)
	}
	return nil
}

func (c *Client) UploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := c.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiry)
	if err != nil {
		return "", apperrors.Storage(errPresignMsg, err)
	}
	return url, nil
}
