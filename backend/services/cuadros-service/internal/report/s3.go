package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Options locate the archive bucket. Endpoint is optional and enables path style access.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Archive uploads generated documents to a bucket.
type S3Archive struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
}

// NewS3Archive builds an archive on top of an aws session.
func NewS3Archive(opts S3Options) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("report: s3 bucket is empty")
	}
	awsConfig := &aws.Config{
		Region:           aws.String(opts.Region),
		S3ForcePathStyle: aws.Bool(opts.Endpoint != ""),
	}
	if opts.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}
	if opts.Endpoint != "" {
		awsConfig.Endpoint = aws.String(opts.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("report: aws session: %w", err)
	}
	return newS3Archive(s3manager.NewUploader(sess), opts.Bucket), nil
}

func newS3Archive(uploader s3manageriface.UploaderAPI, bucket string) *S3Archive {
	return &S3Archive{uploader: uploader, bucket: bucket}
}

// Store uploads doc under key.
func (a *S3Archive) Store(ctx context.Context, key string, doc *Document) error {
	_, err := a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(doc.Body),
		ContentType:        aws.String(doc.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", doc.Filename)),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}
