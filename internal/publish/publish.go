// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package publish

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/dnos-kdev/internal/output"
)

// ContentType is set on every uploaded module.
const ContentType = "application/x-object"

// PutObjecter is the slice of the S3 client used here.
type PutObjecter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Target is a parsed s3://bucket/prefix location.
type Target struct {
	Bucket string
	Prefix string
}

// ParseTarget accepts s3://bucket or s3://bucket/some/prefix.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid upload target %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return Target{}, fmt.Errorf("invalid upload target %q: scheme must be s3://", raw)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("invalid upload target %q: missing bucket", raw)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

func (t Target) String() string {
	if t.Prefix == "" {
		return "s3://" + t.Bucket
	}
	return "s3://" + t.Bucket + "/" + t.Prefix
}

// Key is the object key for a module built for distro.
func (t Target) Key(distro, file string) string {
	return path.Join(t.Prefix, distro, file)
}

// Publisher uploads modules with Client.
type Publisher struct {
	Client PutObjecter
}

// Upload puts each module to the target and returns the object URLs written.
// It stops at the first failure.
func (p Publisher) Upload(ctx context.Context, t Target, distro string, modules []output.Module) ([]string, error) {
	var uploaded []string
	for _, m := range modules {
		key := t.Key(distro, m.Name)
		if err := p.put(ctx, t.Bucket, key, m.Path); err != nil {
			return uploaded, fmt.Errorf("failed to upload %s to s3://%s/%s: %w", m.Name, t.Bucket, key, err)
		}
		log.WithFields(log.Fields{"bucket": t.Bucket, "key": key}).Info("uploaded module")
		uploaded = append(uploaded, "s3://"+t.Bucket+"/"+key)
	}
	return uploaded, nil
}

func (p Publisher) put(ctx context.Context, bucket, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awsv2.String(bucket),
		Key:         awsv2.String(key),
		Body:        f,
		ContentType: awsv2.String(ContentType),
	})
	return err
}
