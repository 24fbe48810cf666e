package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/core"
)

// GetObjectAPI is the interface for the S3 GetObject operation.
// Used for testing with mock implementations.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Fetcher is an S3-backed implementation of the MailFetcher interface
type Fetcher struct {
	client GetObjectAPI
	logger *zap.Logger
}

// NewFetcher creates a new S3-backed fetcher
func NewFetcher(client GetObjectAPI, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// Fetch returns the raw bytes of the referenced object
func (f *Fetcher) Fetch(ctx context.Context, ref core.InboundRef) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, ref.String())
		}
		return nil, fmt.Errorf("failed to get object %s: %w", ref.String(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", ref.String(), err)
	}

	f.logger.Debug("Fetched stored message",
		zap.String("ref", ref.String()),
		zap.Int("size", len(data)))

	return data, nil
}
