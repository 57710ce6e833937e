package spots

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/models"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

const catalogKey = "spots.json"

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// CatalogRecord is the object stored in the bucket
type CatalogRecord struct {
	Spots       []models.Spot `json:"spots"`
	LastUpdated int64         `json:"lastUpdated"`
}

// S3Catalog serves spots from a bucket object, re-reading it once the TTL has
// passed. When the object is missing or unreadable it serves the fallback.
type S3Catalog struct {
	client     S3Client
	bucketName string
	ttl        time.Duration
	clock      clock
	fallback   *StaticCatalog

	mu       sync.RWMutex
	loaded   *StaticCatalog
	loadedAt time.Time
}

var _ models.SpotCatalog = (*S3Catalog)(nil)

func NewS3Catalog(client S3Client, bucketName string, ttl time.Duration, fallback *StaticCatalog) *S3Catalog {
	return &S3Catalog{
		client:     client,
		bucketName: bucketName,
		ttl:        ttl,
		clock:      systemClock{},
		fallback:   fallback,
	}
}

func (c *S3Catalog) List(ctx context.Context) ([]models.Spot, error) {
	return c.current(ctx).List(ctx)
}

func (c *S3Catalog) Get(ctx context.Context, id string) (*models.Spot, error) {
	return c.current(ctx).Get(ctx, id)
}

func (c *S3Catalog) current(ctx context.Context) *StaticCatalog {
	c.mu.RLock()
	loaded, loadedAt := c.loaded, c.loadedAt
	c.mu.RUnlock()

	if loaded != nil && c.clock.Now().Sub(loadedAt) < c.ttl {
		return loaded
	}

	fresh, err := c.load(ctx)
	if err != nil {
		if loaded != nil {
			log.Warn().Err(err).Msg("Reloading spot catalog failed, keeping previous copy")
			return loaded
		}
		log.Warn().Err(err).Msg("Spot catalog unavailable in S3, using embedded catalog")
		return c.fallback
	}

	c.mu.Lock()
	c.loaded = fresh
	c.loadedAt = c.clock.Now()
	c.mu.Unlock()

	return fresh
}

func (c *S3Catalog) load(ctx context.Context) (*StaticCatalog, error) {
	if c.bucketName == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(catalogKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("catalog object %s/%s does not exist", c.bucketName, catalogKey)
		}
		return nil, fmt.Errorf("getting catalog object: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing S3 object body")
		}
	}(result.Body)

	var record CatalogRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding catalog record: %w", err)
	}

	catalog, err := NewStaticCatalogFromSpots(record.Spots)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("spot_count", catalog.Len()).Msg("Loaded spot catalog from S3")
	return catalog, nil
}

// Publish writes spots to the bucket and makes them the current catalog
func (c *S3Catalog) Publish(ctx context.Context, spots []models.Spot) error {
	if c.bucketName == "" {
		return fmt.Errorf("empty bucket name")
	}

	catalog, err := NewStaticCatalogFromSpots(spots)
	if err != nil {
		return err
	}

	now := c.clock.Now()
	record := CatalogRecord{
		Spots:       spots,
		LastUpdated: now.Unix(),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("encoding catalog record: %w", err)
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(catalogKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	c.mu.Lock()
	c.loaded = catalog
	c.loadedAt = now
	c.mu.Unlock()

	log.Info().Int("spot_count", len(spots)).Msg("Published spot catalog to S3")
	return nil
}
