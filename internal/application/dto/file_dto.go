package dto

import "time"

// FileResponse metadatos de un archivo almacenado.
type FileResponse struct {
	ID           string    `json:"id"`
	Bucket       string    `json:"bucket"`
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
