package mirror

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

// 1x1 transparent PNG header is enough for detection
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestS3Mirror_Mirror(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "files/pic.png", pngBytes, 0o640))

	putter := &fakePutter{}
	m := newS3Mirror(putter, "oasis", fs, nopLogger{})
	m.newKey = func(*models.FileRecord) string { return "users/1/fixed/pic.png" }

	key, err := m.Mirror(context.Background(), &models.FileRecord{
		Filename: "pic.png", FileType: models.FileTypeImage, Path: "pic.png", Size: 999, OwnerID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "users/1/fixed/pic.png", key)
	assert.Equal(t, "oasis", aws.ToString(putter.in.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.in.ContentType))
	assert.Equal(t, int64(len(pngBytes)), aws.ToInt64(putter.in.ContentLength), "actual size, not declared")
	assert.Equal(t, "image", putter.in.Metadata["file-type"])
	assert.Equal(t, pngBytes, putter.body, "body must be rewound after detection")
}

func TestS3Mirror_Errors(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "files/a.txt", []byte("hello"), 0o640))

	m := newS3Mirror(&fakePutter{}, "oasis", fs, nopLogger{})
	_, err := m.Mirror(context.Background(), &models.FileRecord{Path: "missing.txt"})
	assert.Error(t, err)

	boom := errors.New("bucket gone")
	m = newS3Mirror(&fakePutter{err: boom}, "oasis", fs, nopLogger{})
	_, err = m.Mirror(context.Background(), &models.FileRecord{Path: "a.txt"})
	assert.True(t, errors.Is(err, boom))
}

func TestStorageKey(t *testing.T) {
	rec := &models.FileRecord{OwnerID: 42, Path: "a-0.txt"}
	a, b := StorageKey(rec), StorageKey(rec)

	assert.Regexp(t, `^users/42/[0-9a-f-]{36}/a-0\.txt$`, a)
	assert.NotEqual(t, a, b)
}

func TestNew_AppliesOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	m, err := New(context.Background(), Options{
		User: "user", Password: "pw", Bucket: "b", Region: "eu-west-1", BaseEndpoint: "http://minio:9000",
	}, memfs.New(), nopLogger{})
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "b", m.bucket)
}

func TestNew_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	boom := errors.New("no config")
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}

	_, err := New(context.Background(), Options{}, memfs.New(), nopLogger{})
	assert.True(t, errors.Is(err, boom))
}
