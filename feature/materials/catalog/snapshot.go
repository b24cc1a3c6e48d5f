package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"material-reconciler/core/reconcile"
	"material-reconciler/core/storage"
	"material-reconciler/core/utils"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

// DefaultObject is the snapshot object name used when none is configured.
const DefaultObject = "warehouse_materials.json"

// SnapshotCatalog reads the catalog from a JSON object in the bucket.
//
// The object is either {"materials": [...]} or a bare array. Numeric fields
// may be numbers or strings ("1,4" is accepted). Entries without a positive
// id or a name are skipped.
type SnapshotCatalog struct {
	client storage.Client
	bucket string
	object string
}

// NewSnapshotCatalog creates a snapshot-backed catalog.
func NewSnapshotCatalog(client storage.Client, bucket, object string) *SnapshotCatalog {
	if object == "" {
		object = DefaultObject
	}
	return &SnapshotCatalog{client: client, bucket: bucket, object: object}
}

// Name implements reconcile.Catalog.
func (c *SnapshotCatalog) Name() string {
	return "storage"
}

// Object returns the object name the catalog reads.
func (c *SnapshotCatalog) Object() string {
	return c.object
}

// Materials implements reconcile.Catalog.
func (c *SnapshotCatalog) Materials(ctx context.Context) ([]reconcile.WarehouseMaterial, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, c.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", c.object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.object, err)
	}

	return ParseSnapshot(data)
}

// Stat reports whether the snapshot object exists.
func (c *SnapshotCatalog) Stat(ctx context.Context) (minio.ObjectInfo, bool, error) {
	info, err := c.client.StatObject(ctx, c.bucket, c.object, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return minio.ObjectInfo{}, false, nil
		}
		return minio.ObjectInfo{}, false, fmt.Errorf("failed to stat %s: %w", c.object, err)
	}
	return info, true, nil
}

type snapshotEnvelope struct {
	Materials []map[string]any `json:"materials"`
}

// ParseSnapshot decodes a catalog snapshot.
func ParseSnapshot(data []byte) ([]reconcile.WarehouseMaterial, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty catalog snapshot")
	}

	var raw []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
		}
	} else {
		var env snapshotEnvelope
		if err := dec.Decode(&env); err != nil {
			return nil, fmt.Errorf("failed to decode catalog snapshot: %w", err)
		}
		raw = env.Materials
	}

	out := make([]reconcile.WarehouseMaterial, 0, len(raw))
	for _, r := range raw {
		m := reconcile.WarehouseMaterial{
			ID:           utils.ToInt64(r["id"]),
			Name:         strings.TrimSpace(utils.ToString(r["name"])),
			Category:     strings.TrimSpace(utils.ToString(r["category"])),
			Unit:         utils.ToString(r["unit"]),
			CurrentStock: utils.ToFloat(r["current_stock"]),
			UnitPrice:    utils.ToFloat(r["unit_price"]),
		}
		if m.ID <= 0 || m.Name == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// WriteSnapshot uploads materials as a snapshot object, creating the bucket
// when it does not exist yet.
func WriteSnapshot(ctx context.Context, client storage.Client, bucket, object string, materials []reconcile.WarehouseMaterial) (minio.UploadInfo, error) {
	if object == "" {
		object = DefaultObject
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return minio.UploadInfo{}, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	if materials == nil {
		materials = []reconcile.WarehouseMaterial{}
	}
	data, err := json.Marshal(map[string]any{"materials": materials})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}

	info, err := client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload %s: %w", object, err)
	}
	return info, nil
}
