package imports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"TradeFlowERP/api/imports/pipeline"
)

const (
	importsDefaultBucket  = "tradeflow"
	importsPrefix         = "imports/"
	importsDefaultRegion  = "af-south-1"
	importsDefaultBaseURL = "https://tradeflow.s3.af-south-1.amazonaws.com/"
)

func importsBucket() string {
	if b := strings.TrimSpace(os.Getenv("IMPORTS_S3_BUCKET")); b != "" {
		return b
	}
	return importsDefaultBucket
}

func importsRegion() string {
	if r := strings.TrimSpace(os.Getenv("IMPORTS_S3_REGION")); r != "" {
		return r
	}
	return importsDefaultRegion
}

func importsBaseURL() string {
	if u := strings.TrimSpace(os.Getenv("IMPORTS_S3_BASE_URL")); u != "" {
		u = strings.TrimSuffix(u, "/")
		return u + "/"
	}
	return importsDefaultBaseURL
}

// isArchiveEnabled reads IMPORTS_S3_ENABLED. Defaults to off: most deployments
// keep originals on the uploader's side and only opt in for audited companies.
func isArchiveEnabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("IMPORTS_S3_ENABLED")))
	return v == "1" || v == "true" || v == "yes"
}

func buildImportS3Key(importType, batchID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s%s/%s%s", importsPrefix, importType, batchID, ext)
}

func detectContentType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > 512 {
		return http.DetectContentType(data[:512])
	}
	return http.DetectContentType(data)
}

// archiveOriginal keeps a copy of the uploaded file in S3 for audit replay.
// Failures are reported to the caller but never fail the import itself.
func archiveOriginal(ctx context.Context, batch *pipeline.Batch, body []byte) (string, error) {
	if !isArchiveEnabled() {
		return "", nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(importsRegion()))
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	key := buildImportS3Key(batch.ImportType, batch.ID, batch.FileName)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(importsBucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(detectContentType(body)),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3 (bucket %s, key %s): %w", importsBucket(), key, err)
	}
	return importsBaseURL() + key, nil
}
