// Package mirror copies finished files to an S3-compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/dmitrijs2005/oasis/internal/server/uploads"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options are the connection settings of the bucket.
type Options struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Mirror uploads combined files from the storage root into a bucket.
type S3Mirror struct {
	client objectPutter
	bucket string
	fs     billy.Filesystem
	logger logging.Logger
	newKey func(file *models.FileRecord) string
}

// New builds an S3 client from opts with static credentials and a
// path-style endpoint (MinIO and friends).
func New(ctx context.Context, opts Options, fs billy.Filesystem, l logging.Logger) (*S3Mirror, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.User,
			opts.Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Mirror(client, opts.Bucket, fs, l), nil
}

func newS3Mirror(client objectPutter, bucket string, fs billy.Filesystem, l logging.Logger) *S3Mirror {
	return &S3Mirror{
		client: client,
		bucket: bucket,
		fs:     fs,
		logger: l.With("module", "mirror"),
		newKey: StorageKey,
	}
}

// StorageKey is the object key of a mirrored file:
// users/<owner_id>/<uuid>/<path>.
func StorageKey(file *models.FileRecord) string {
	return fmt.Sprintf("users/%d/%s/%s", file.OwnerID, uuid.NewString(), file.Path)
}

// Mirror uploads the combined file of record and returns its object key.
func (m *S3Mirror) Mirror(ctx context.Context, file *models.FileRecord) (string, error) {
	path := filepath.Join(uploads.FilesDirName, file.Path)
	fi, err := m.fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", file.Path, err)
	}

	f, err := m.fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type of %s: %w", file.Path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind %s: %w", file.Path, err)
	}

	key := m.newKey(file)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String(mtype.String()),
		Metadata: map[string]string{
			"filename":  file.Filename,
			"file-type": string(file.FileType),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	m.logger.Info(ctx, "file mirrored", "key", key, "content_type", mtype.String(), "size", fi.Size())
	return key, nil
}
