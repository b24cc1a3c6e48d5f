package checks

import (
	"context"
	"fmt"
	"time"

	"material-reconciler/core/database"
	"material-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// CatalogReport describes the state of the configured catalog source.
type CatalogReport struct {
	Source       string     `json:"source"`
	Status       string     `json:"status"` // "ok", "empty", "missing"
	Object       string     `json:"object,omitempty"`
	Size         int64      `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Rows         int64      `json:"rows,omitempty"`
}

// CheckSnapshot verifies that the catalog snapshot object exists in the bucket.
func CheckSnapshot(ctx context.Context, client storage.Client, bucket, object string) (*CatalogReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	report := &CatalogReport{Source: "storage", Object: object, Status: "missing"}

	info, err := client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return report, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", object, err)
	}

	report.Size = info.Size
	if !info.LastModified.IsZero() {
		lm := info.LastModified
		report.LastModified = &lm
	}
	report.Status = "ok"
	if info.Size == 0 {
		report.Status = "empty"
	}
	return report, nil
}

// CheckCatalogTable counts the rows of the catalog table.
func CheckCatalogTable(db *gorm.DB, table string) (*CatalogReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	rows, err := database.CountRows(db, table)
	if err != nil {
		return nil, err
	}

	report := &CatalogReport{Source: "database", Rows: rows, Status: "ok"}
	if rows == 0 {
		report.Status = "empty"
	}
	return report, nil
}
