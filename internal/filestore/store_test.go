package filestore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/solpipe/internal/config"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	ctx := context.Background()

	body := "Section L\n\nProvide a staffing plan."
	require.NoError(t, store.Save(ctx, "org-1/doc-1/chunk-0001.txt", strings.NewReader(body), int64(len(body))))

	text, err := ReadText(ctx, store, "org-1/doc-1/chunk-0001.txt")
	require.NoError(t, err)
	require.Equal(t, body, text)

	_, err = ReadText(ctx, store, "org-1/doc-1/missing.txt")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	for _, key := range []string{"", "../etc/passwd", "a/../../b", "a\\b"} {
		_, err := store.Open(context.Background(), key)
		require.Error(t, err, key)
		require.NotErrorIs(t, err, appErr.ErrNotFound, key)
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{})
	require.Error(t, err)
}

func TestReadTextReplacesInvalidUTF8(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "bad.txt", bytes.NewReader([]byte{'o', 'k', 0xff}), 3))
	text, err := ReadText(ctx, store, "bad.txt")
	require.NoError(t, err)
	require.Equal(t, "ok�", text)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePrefixAndNotFound(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	store := newS3Store(client, "chunks", "/index/")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "doc-1/0.txt", strings.NewReader("hello"), 5))
	require.Contains(t, client.objects, "chunks/index/doc-1/0.txt")

	text, err := ReadText(ctx, store, "doc-1/0.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", text)

	_, err = ReadText(ctx, store, "doc-1/1.txt")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
