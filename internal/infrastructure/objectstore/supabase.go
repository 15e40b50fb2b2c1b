// Package objectstore implementa storage.ObjectStore sobre Supabase Storage
// (API REST) y una variante en memoria para desarrollo.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jhoicas/Facturo-api/internal/application/storage"
)

var _ storage.ObjectStore = (*SupabaseStore)(nil)

// SupabaseConfig credenciales del proyecto Supabase.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// SupabaseStore cliente mínimo de la API de Storage de Supabase.
type SupabaseStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseStore construye el cliente.
func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("objectstore: URL requerida")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("objectstore: service key requerida")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseStore{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.ServiceKey,
		httpClient: hc,
	}, nil
}

// Upload sube el objeto; falla si ya existe (sin upsert).
func (s *SupabaseStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucket, path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("objectstore: crear request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	_, err = s.do(req)
	return err
}

// Download descarga el contenido del objeto.
func (s *SupabaseStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(bucket, path), nil)
	if err != nil {
		return nil, fmt.Errorf("objectstore: crear request: %w", err)
	}
	return s.do(req)
}

// Delete borra uno o varios objetos del bucket.
func (s *SupabaseStore) Delete(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	body, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return fmt.Errorf("objectstore: serializar prefixes: %w", err)
	}
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s", s.baseURL, url.PathEscape(bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("objectstore: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = s.do(req)
	return err
}

// SignedURL pide a Supabase una URL firmada con expiración.
func (s *SupabaseStore) SignedURL(ctx context.Context, bucket, path string, expiresInSeconds int) (string, error) {
	if expiresInSeconds <= 0 {
		expiresInSeconds = 3600
	}
	body, _ := json.Marshal(map[string]int{"expiresIn": expiresInSeconds})
	reqURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, url.PathEscape(bucket), escapePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("objectstore: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	signed := gjson.GetBytes(resp, "signedURL").String()
	if signed == "" {
		signed = gjson.GetBytes(resp, "signedUrl").String()
	}
	if signed == "" {
		return "", fmt.Errorf("%w: respuesta sin signedURL", storage.ErrUnexpectedResponse)
	}
	return s.baseURL + "/storage/v1" + signed, nil
}

func (s *SupabaseStore) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(bucket), escapePath(path))
}

func (s *SupabaseStore) do(req *http.Request) ([]byte, error) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("objectstore: http: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: leer respuesta: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, responseError(resp.StatusCode, body)
	}
	return body, nil
}

func responseError(status int, body []byte) error {
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = gjson.GetBytes(body, "error").String()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status == http.StatusNotFound || gjson.GetBytes(body, "statusCode").String() == "404" {
		return fmt.Errorf("%w: %s", storage.ErrObjectNotFound, msg)
	}
	return fmt.Errorf("objectstore: status %d: %s", status, msg)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
