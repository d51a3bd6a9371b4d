package files

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appconfig "eseva-portal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	deleted []string
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]string{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3DocumentStore_Promote(t *testing.T) {
	fake := newFakeS3()
	store := newS3DocumentStore(fake, "docs")

	staging := NewLocalStaging(t.TempDir(), zerolog.Nop())
	staging.now = fixedClock(time.UnixMilli(1700000000000))
	tmp, err := staging.Stage("order-7", "aadhar", "scan.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)

	public, err := store.Promote(context.Background(), tmp, "itr")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/itr/order-7_aadhar_1700000000000.pdf", public)
	assert.Equal(t, "pdf", fake.objects["docs/itr/order-7_aadhar_1700000000000.pdf"])
	assert.NoFileExists(t, tmp)
}

func TestS3DocumentStore_Promote_PutFailsKeepsTemp(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("503 slow down")
	store := newS3DocumentStore(fake, "docs")

	tmp := filepath.Join(t.TempDir(), "pan_1.pdf")
	require.NoError(t, os.WriteFile(tmp, []byte("pdf"), 0o600))

	_, err := store.Promote(context.Background(), tmp, "itr")
	assert.ErrorContains(t, err, "s3 put itr/pan_1.pdf")
	assert.FileExists(t, tmp)
}

func TestS3DocumentStore_SaveAndRemove(t *testing.T) {
	fake := newFakeS3()
	store := newS3DocumentStore(fake, "docs")
	ctx := context.Background()

	public, err := store.Save(ctx, "voter", "epic_9.pdf", strings.NewReader("epic"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/voter/epic_9.pdf", public)
	assert.Equal(t, "epic", fake.objects["docs/voter/epic_9.pdf"])

	require.NoError(t, store.Remove(ctx, public))
	assert.Equal(t, []string{"voter/epic_9.pdf"}, fake.deleted)
}

func TestNewS3DocumentStore_RequiresBucket(t *testing.T) {
	_, err := NewS3DocumentStore(context.Background(), appS3Config(""))
	assert.Error(t, err)
}

func appS3Config(bucket string) appconfig.S3Config {
	return appconfig.S3Config{Bucket: bucket, Region: "ap-south-1"}
}
