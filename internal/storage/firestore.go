package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/compuzone-diy/price-crawler/internal/config"
	"github.com/compuzone-diy/price-crawler/internal/models"
)

const (
	// Firestore layout the dashboard reads:
	// compuzone_prices/{YYYY-MM-DD}/{brand}/{productNo}
	pricesCollection = "compuzone_prices"
	statusCollection = "crawl_status"
	statusDocID      = "latest"

	// Firestore rejects batches above 500 writes; chunks stay under that
	// with margin for the master document.
	maxBatchSize = 500
)

// Client persists daily snapshots and crawl progress to Firestore.
type Client struct {
	fs        *firestore.Client
	batchSize int
	logger    *slog.Logger
}

// New authenticates against Firebase either with a service-account file or
// with the discrete project/email/key fields CI secrets provide.
func New(ctx context.Context, cfg config.FirebaseConfig, batchSize int) (*Client, error) {
	if batchSize < 1 || batchSize > maxBatchSize {
		return nil, fmt.Errorf("batch size must be between 1 and %d, got %d", maxBatchSize, batchSize)
	}

	opt, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &Client{
		fs:        fs,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "storage"),
	}, nil
}

func credentialsOption(cfg config.FirebaseConfig) (option.ClientOption, error) {
	if cfg.CredentialsFile != "" {
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	}

	cred, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble service account credentials: %w", err)
	}

	return option.WithCredentialsJSON(cred), nil
}

// SaveSnapshot writes the snapshot's products keyed by product id, in
// batches of at most batchSize writes. A product document is replaced
// wholesale, so re-running the same day updates records instead of
// duplicating them; duplicate ids within one run resolve last-write-wins the
// same way. The per-date master document accumulates per-brand counts.
func (c *Client) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	dateDoc := c.fs.Collection(pricesCollection).Doc(snap.Date)

	for i, chunk := range chunkProducts(snap.Products, c.batchSize) {
		batch := c.fs.Batch()

		for _, product := range chunk {
			ref := dateDoc.Collection(snap.Brand).Doc(product.ProductNo)
			batch.Set(ref, product)
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit batch %d for %s/%s: %w", i+1, snap.Date, snap.Brand, err)
		}

		c.logger.Debug("batch committed", "date", snap.Date, "brand", snap.Brand, "chunk", i+1, "writes", len(chunk))
	}

	// date-list index doc the dashboard's date picker reads
	_, err := dateDoc.Set(ctx, map[string]any{
		"date":      snap.Date,
		"counts":    map[string]any{snap.Brand: len(snap.Products)},
		"createdAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update snapshot master doc for %s: %w", snap.Date, err)
	}

	c.logger.Info("snapshot saved", "date", snap.Date, "brand", snap.Brand, "products", len(snap.Products))
	return nil
}

// SetStatus upserts the crawl_status/latest progress document the dashboard
// subscribes to.
func (c *Client) SetStatus(ctx context.Context, status models.CrawlStatus) error {
	_, err := c.fs.Collection(statusCollection).Doc(statusDocID).Set(ctx, map[string]any{
		"status":    string(status.Status),
		"percent":   status.Percent,
		"detail":    status.Detail,
		"runId":     status.RunID,
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update crawl status: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// chunkProducts splits products into slices of at most size elements,
// preserving order.
func chunkProducts(products []*models.Product, size int) [][]*models.Product {
	if len(products) == 0 {
		return nil
	}

	var chunks [][]*models.Product
	for size < len(products) {
		chunks = append(chunks, products[:size])
		products = products[size:]
	}
	return append(chunks, products)
}
