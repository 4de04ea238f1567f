// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dnos-kdev/internal/output"
)

type fakeS3 struct {
	puts   map[string]string
	failOn string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if *in.Key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[*in.Bucket+"/"+*in.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw     string
		want    Target
		wantErr string
	}{
		{raw: "s3://bucket", want: Target{Bucket: "bucket"}},
		{raw: "s3://bucket/", want: Target{Bucket: "bucket"}},
		{raw: "s3://bucket/kdev/patches/", want: Target{Bucket: "bucket", Prefix: "kdev/patches"}},
		{raw: "https://bucket/x", wantErr: "scheme must be s3://"},
		{raw: "s3:///x", wantErr: "missing bucket"},
		{raw: "bucket/x", wantErr: "scheme must be s3://"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTarget(tt.raw)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTarget_StringAndKey(t *testing.T) {
	assert.Equal(t, "s3://b", Target{Bucket: "b"}.String())
	assert.Equal(t, "s3://b/p/q", Target{Bucket: "b", Prefix: "p/q"}.String())
	assert.Equal(t, "focal/x.ko", Target{Bucket: "b"}.Key("focal", "x.ko"))
	assert.Equal(t, "p/bionic/x.ko", Target{Bucket: "b", Prefix: "p"}.Key("bionic", "x.ko"))
}

func modules(t *testing.T, names ...string) []output.Module {
	t.Helper()
	dir := t.TempDir()
	var mods []output.Module
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("ko:"+n), 0o644))
		mods = append(mods, output.Module{Name: n, Path: p})
	}
	return mods
}

func TestPublisher_Upload(t *testing.T) {
	fake := &fakeS3{}
	p := Publisher{Client: fake}

	got, err := p.Upload(context.Background(), Target{Bucket: "b", Prefix: "kdev"}, "focal", modules(t, "a.ko", "b.ko"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://b/kdev/focal/a.ko", "s3://b/kdev/focal/b.ko"}, got)
	assert.Equal(t, map[string]string{
		"b/kdev/focal/a.ko": "ko:a.ko",
		"b/kdev/focal/b.ko": "ko:b.ko",
	}, fake.puts)
}

func TestPublisher_UploadFailure(t *testing.T) {
	fake := &fakeS3{failOn: "focal/b.ko"}
	p := Publisher{Client: fake}

	got, err := p.Upload(context.Background(), Target{Bucket: "b"}, "focal", modules(t, "a.ko", "b.ko", "c.ko"))
	assert.ErrorContains(t, err, "failed to upload b.ko to s3://b/focal/b.ko: access denied")
	assert.Equal(t, []string{"s3://b/focal/a.ko"}, got)
	assert.NotContains(t, fake.puts, "b/focal/c.ko")
}

func TestPublisher_MissingFile(t *testing.T) {
	p := Publisher{Client: &fakeS3{}}
	_, err := p.Upload(context.Background(), Target{Bucket: "b"}, "focal",
		[]output.Module{{Name: "gone.ko", Path: filepath.Join(t.TempDir(), "gone.ko")}})
	assert.Error(t, err)
}
