package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/logger"
)

// FilePublisher uploads verified output files to S3 under <prefix>/<folder>/<file>.
type FilePublisher struct {
	log    logger.Logger
	client BasicClient
	bucket AwsS3Bucket
}

// NewFilePublisher creates an S3 client for bucket and returns a FilePublisher that uses it.
func NewFilePublisher(log logger.Logger, bucket AwsS3Bucket) (*FilePublisher, error) {
	c, err := NewBasicClient(bucket.Name, bucket.Region, bucket.Prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create S3 client for %v", bucket)
	}
	return NewFilePublisherWithClient(log, bucket, c), nil
}

// NewFilePublisherWithClient returns a FilePublisher that uses client.
func NewFilePublisherWithClient(log logger.Logger, bucket AwsS3Bucket, client BasicClient) *FilePublisher {
	return &FilePublisher{log: log, client: client, bucket: bucket}
}

// ObjectKey returns the key, relative to the bucket prefix, used for fileName in folder.
func ObjectKey(fileName string, folder string) string {
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	if folder == "" {
		return filepath.Base(fileName)
	}
	return path.Join(folder, filepath.Base(fileName))
}

// Publish uploads fileName and checks that the key can be listed afterwards.
func (p *FilePublisher) Publish(ctx context.Context, fileName string, folder string) error {
	key := ObjectKey(fileName, folder)
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to open file %v for upload", fileName)
	}
	defer func() {
		_ = f.Close()
	}()
	p.log.Debug("uploading file ", fileName, " to ", p.bucket, "/", key)
	if err = p.client.BufferPut(ctx, key, f); err != nil {
		return errors.Wrapf(err, "unable to upload %v to %v", fileName, p.bucket)
	}
	keys, err := p.client.List(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "unable to list uploaded key %v", key)
	}
	if len(keys) == 0 {
		return fmt.Errorf("uploaded key %v not found in %v", key, p.bucket)
	}
	p.log.Info("published file ", fileName, " to ", p.bucket, "/", key)
	return nil
}
