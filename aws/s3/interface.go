package s3

import (
	"context"
	"io"
)

type BasicClient interface {
	Lister
	BufferPutter
}

type Lister interface {
	List(ctx context.Context, key string) (keys []string, err error)
}

// BufferPutter can be used to put a file to S3 since File implements Read and Seek.
type BufferPutter interface {
	BufferPut(ctx context.Context, key string, buf io.ReadSeeker) (err error)
}
