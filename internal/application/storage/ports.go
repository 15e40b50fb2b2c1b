package storage

import (
	"context"
	"errors"
)

// ObjectStore puerto hacia el almacenamiento de objetos (buckets).
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	Delete(ctx context.Context, bucket string, paths ...string) error
	// SignedURL devuelve una URL temporal de descarga.
	SignedURL(ctx context.Context, bucket, path string, expiresInSeconds int) (string, error)
}

// Errores del almacenamiento de objetos.
var (
	ErrObjectNotFound     = errors.New("objeto no encontrado en el almacenamiento")
	ErrUnexpectedResponse = errors.New("respuesta inesperada del almacenamiento")
)
