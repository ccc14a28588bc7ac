// Package publish uploads the saved report artifacts to an S3 bucket, keeping
// a history of the reports under a prefix per run.
package publish

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

const compressedExt = ".xz"

// Publisher uploads report files to a bucket.
type Publisher struct {
	bucket   string
	prefix   string
	dryRun   bool
	uploader s3manageriface.UploaderAPI
}

// NewPublisher creates a publisher backed by an S3 uploader in region.
func NewPublisher(bucket, region, prefix string, dryRun bool) (*Publisher, error) {
	if bucket == "" {
		return nil, errors.New("missing publish.bucket configuration")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the AWS session")
	}
	return newPublisher(bucket, prefix, dryRun, s3manager.NewUploader(sess)), nil
}

func newPublisher(bucket, prefix string, dryRun bool, uploader s3manageriface.UploaderAPI) *Publisher {
	return &Publisher{
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		dryRun:   dryRun,
		uploader: uploader,
	}
}

// ObjectPrefix returns the key prefix of the run generated at t.
func (p *Publisher) ObjectPrefix(t time.Time) string {
	return path.Join(p.prefix, t.UTC().Format("20060102-150405"))
}

// Publish uploads the files under the run prefix. Files listed in compress
// are uploaded xz-compressed, with the .xz suffix added to the key. It
// returns the S3 URIs of the uploaded objects.
func (p *Publisher) Publish(files []string, compress map[string]bool, at time.Time) ([]string, error) {
	prefix := p.ObjectPrefix(at)
	var uris []string
	for _, file := range files {
		uri, err := p.publishFile(file, prefix, compress[filepath.Base(file)])
		if err != nil {
			return uris, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}

func (p *Publisher) publishFile(file, prefix string, compress bool) (string, error) {
	log.Debugf("Publish(): opening file %s", file)
	fd, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", file, err)
	}
	defer fd.Close()

	name := filepath.Base(file)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	var body io.Reader = fd
	if compress {
		buf, err := Compress(fd)
		if err != nil {
			return "", fmt.Errorf("failed to compress file %s: %w", file, err)
		}
		body = buf
		name += compressedExt
		contentType = "application/x-xz"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join(prefix, name)
	uri := "s3://" + p.bucket + "/" + key
	if p.dryRun {
		log.Warnf("DRY-RUN mode: skipping upload to %s", uri)
		return uri, nil
	}

	_, err = p.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s to bucket %s: %w", name, p.bucket, err)
	}
	log.Info("Report published successfully to ", uri)
	return uri, nil
}

// Compress returns the xz-compressed content of r.
func Compress(r io.Reader) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w, err := xz.NewWriter(buf)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(w, r); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}
