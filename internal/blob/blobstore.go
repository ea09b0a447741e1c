// Package blob re-exports the blob storage abstractions and backend
// constructors used by the report export worker.
package blob

import (
	"context"
	"fmt"
	"os"

	"retailcore/internal/blob/core"
	fsblob "retailcore/internal/infra/blob/fs"
	memblob "retailcore/internal/infra/blob/memory"
	s3blob "retailcore/internal/infra/blob/s3"
)

// Re-exported core types so callers depend on a single import path.
type (
	Driver     = core.Driver
	PutOptions = core.PutOptions
	Info       = core.Info
	Store      = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrUnsupported mirrors core.ErrUnsupported.
var ErrUnsupported = core.ErrUnsupported

// NewMemory returns an in-memory store.
func NewMemory() Store { return memblob.New() }

// NewFilesystem returns a filesystem store rooted at the given directory.
func NewFilesystem(root string) (Store, error) { return fsblob.New(root) }

// Open selects a blob.Store implementation using environment variables.
//
//	RETAILCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	RETAILCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./exports)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	return OpenDriver(ctx, os.Getenv("RETAILCORE_BLOB_DRIVER"), os.Getenv("RETAILCORE_BLOB_FS_ROOT"))
}

// OpenDriver selects a blob.Store for an explicit driver. An empty driver
// defaults to the filesystem backend.
func OpenDriver(ctx context.Context, driver, fsRoot string) (Store, error) {
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(fsRoot)
	case DriverS3:
		return s3blob.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
