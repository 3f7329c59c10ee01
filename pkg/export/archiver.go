// Package export archives full run reports to S3 as snappy-compressed JSON.
// Archived reports keep the per-node results that the store write-back
// flattens into attributes, so historical runs stay replayable.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
)

// ObjectPutter is the slice of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes run reports into an S3 bucket.
type Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	logger logging.Logger
}

// New creates an archiver using the default AWS credential chain.
func New(ctx context.Context, bucket, prefix, region string, logger logging.Logger) (*Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewWithClient creates an archiver over an existing client. A nil logger
// disables logging.
func NewWithClient(client ObjectPutter, bucket, prefix string, logger logging.Logger) *Archiver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Key returns the object key for a report: <prefix>/<kind>/<date>/<run-id>.json.snappy
func (a *Archiver) Key(report *pipeline.RunReport) string {
	key := fmt.Sprintf("%s/%s/%s.json.snappy",
		report.Kind,
		report.StartedAt.UTC().Format("2006-01-02"),
		report.RunID,
	)
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}

// ArchiveReport compresses and uploads one report.
func (a *Archiver) ArchiveReport(ctx context.Context, report *pipeline.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report %s: %w", report.RunID, err)
	}
	compressed := snappy.Encode(nil, data)

	key := a.Key(report)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/x-snappy"),
	})
	if err != nil {
		return fmt.Errorf("uploading report %s: %w", report.RunID, err)
	}

	a.logger.Info("archived run report",
		logging.RunID(report.RunID),
		logging.String("key", key),
		logging.Int("raw_bytes", len(data)),
		logging.Int("compressed_bytes", len(compressed)),
	)
	return nil
}

// DecodeReport reverses ArchiveReport's encoding, for consumers reading
// archived objects back.
func DecodeReport(compressed []byte) (*pipeline.RunReport, error) {
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompressing report: %w", err)
	}
	var report pipeline.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &report, nil
}
