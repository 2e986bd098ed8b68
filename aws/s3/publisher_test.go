package s3

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/relloyd/psvexport/logger"
)

// fakeS3 keeps objects in memory. Methods that are not overridden panic via the nil embedded interface.
type fakeS3 struct {
	s3iface.S3API
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := ioutil.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsWithContext(ctx aws.Context, in *s3.ListObjectsInput, opts ...request.Option) (*s3.ListObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsOutput{IsTruncated: aws.Bool(false)}
	k := aws.StringValue(in.Prefix)
	if _, ok := f.objects[aws.StringValue(in.Bucket)+"/"+k]; ok {
		out.Contents = append(out.Contents, &s3.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestParseDSN(t *testing.T) {
	// Test 1 - bucket and prefix with scheme.
	b, err := ParseDSN("s3://my-bucket/lookups/", "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name != "my-bucket" || b.Prefix != "lookups" || b.Region != "eu-west-1" {
		t.Fatalf("unexpected bucket: %+v", b)
	}
	// Test 2 - the scheme is optional.
	b, err = ParseDSN("my-bucket", "eu-west-1")
	if err != nil || b.Name != "my-bucket" || b.Prefix != "" {
		t.Fatalf("unexpected bucket %+v or error %v", b, err)
	}
	// Test 3 - other schemes and missing regions are rejected.
	if _, err = ParseDSN("gs://my-bucket", "eu-west-1"); err == nil {
		t.Fatal("expected error for bad scheme")
	}
	if _, err = ParseDSN("s3://my-bucket", ""); err == nil {
		t.Fatal("expected error for missing region")
	}
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		file, folder, expected string
	}{
		{"/out/orders/orders_20200101.psv", "/orders/", "orders/orders_20200101.psv"},
		{"/out/orders_20200101.psv", "", "orders_20200101.psv"},
		{"/out/a/b/x.psv", "a/b", "a/b/x.psv"},
	}
	for _, c := range cases {
		if got := ObjectKey(c.file, c.folder); got != c.expected {
			t.Fatalf("expected key %v, got %v", c.expected, got)
		}
	}
}

func TestPublish(t *testing.T) {
	log := logger.NewLogger("px-test", "error", true)
	fileName := filepath.Join(t.TempDir(), "orders_20200101.psv")
	if err := os.WriteFile(fileName, []byte("1|a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	api := newFakeS3()
	bucket := AwsS3Bucket{Name: "my-bucket", Prefix: "lookups", Region: "eu-west-1"}
	p := NewFilePublisherWithClient(log, bucket, NewBasicClientWithAPI(bucket.Name, bucket.Region, bucket.Prefix, api))

	// Test 1 - the file lands under prefix/folder.
	if err := p.Publish(context.Background(), fileName, "/orders/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(api.objects["my-bucket/lookups/orders/orders_20200101.psv"]); got != "1|a\n" {
		t.Fatalf("unexpected object contents %q in %v", got, api.objects)
	}
	// Test 2 - upload errors are returned.
	api.putErr = errors.New("access denied")
	if err := p.Publish(context.Background(), fileName, "orders"); err == nil {
		t.Fatal("expected upload error")
	}
	// Test 3 - missing files are an error.
	api.putErr = nil
	if err := p.Publish(context.Background(), fileName+".missing", "orders"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
