package export

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func sampleReport() *pipeline.RunReport {
	return &pipeline.RunReport{
		RunID:      "run-7",
		Kind:       pipeline.KindCommunity,
		StartedAt:  time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC),
		Duration:   time.Second,
		GraphNodes: 100,
		GraphEdges: 250,
		Outcomes: map[string]algorithms.RunOutcome{
			"louvain": {
				Result:   algorithms.Result{"0x1": 0, "0x2": 1},
				Metadata: algorithms.Metadata{Algorithm: "louvain", ResultCount: 2},
			},
		},
	}
}

func TestArchiveReport(t *testing.T) {
	putter := &fakePutter{}
	a := NewWithClient(putter, "analytics-archive", "reports", nil)

	if err := a.ArchiveReport(context.Background(), sampleReport()); err != nil {
		t.Fatalf("ArchiveReport failed: %v", err)
	}

	if len(putter.inputs) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(putter.inputs))
	}
	input := putter.inputs[0]
	if *input.Bucket != "analytics-archive" {
		t.Errorf("Unexpected bucket %q", *input.Bucket)
	}
	if *input.Key != "reports/community/2026-03-15/run-7.json.snappy" {
		t.Errorf("Unexpected key %q", *input.Key)
	}

	// The uploaded body round-trips back into the report
	body, err := io.ReadAll(input.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	decoded, err := DecodeReport(body)
	if err != nil {
		t.Fatalf("DecodeReport failed: %v", err)
	}
	if decoded.RunID != "run-7" || decoded.GraphNodes != 100 {
		t.Errorf("Report did not round-trip: %+v", decoded)
	}
	if decoded.Outcomes["louvain"].Result["0x2"] != 1 {
		t.Errorf("Expected per-node results preserved, got %+v", decoded.Outcomes)
	}
}

func TestKey_NoPrefix(t *testing.T) {
	a := NewWithClient(&fakePutter{}, "bucket", "", nil)

	key := a.Key(sampleReport())
	if strings.HasPrefix(key, "/") {
		t.Errorf("Expected no leading slash, got %q", key)
	}
	if key != "community/2026-03-15/run-7.json.snappy" {
		t.Errorf("Unexpected key %q", key)
	}
}

func TestArchiveReport_UploadError(t *testing.T) {
	uploadErr := errors.New("access denied")
	a := NewWithClient(&fakePutter{err: uploadErr}, "bucket", "", nil)

	err := a.ArchiveReport(context.Background(), sampleReport())
	if !errors.Is(err, uploadErr) {
		t.Errorf("Expected upload error, got %v", err)
	}
}

func TestDecodeReport_BadData(t *testing.T) {
	if _, err := DecodeReport([]byte("not snappy")); err == nil {
		t.Error("Expected error for invalid data")
	}
}
