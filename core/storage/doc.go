// Package storage provides the object storage client (S3 / MinIO).
//
// The sync service uses object storage for two optional concerns:
//   - Source snapshots: raw search responses cached per enumeration unit so
//     repeated local runs do not hit the upstream catalog.
//   - Run reports: the JSON summary of every finished reconciliation run.
//
// The Client interface wraps the subset of minio-go the application needs,
// which keeps it mockable (see the mocks subpackage).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket); err != nil {
//	    return err
//	}
//	err = storage.PutJSON(ctx, client, cfg.Storage.Bucket, "reports/run.json", summary)
package storage
