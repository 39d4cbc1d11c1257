package transfer

import (
	"encoding/json"
	"fmt"
)

// UploadItem is one normalized entry from an upload initiation request. The
// populated fields depend on the provider: link based providers (dropbox)
// send a path, picker based providers (google_drive) send a file id plus an
// access token. Owner, Name and SizeInBytes are optional on any item.
type UploadItem struct {
	Path        string `json:"path"`
	FileID      string `json:"file_id"`
	AccessToken string `json:"token"`
	Owner       int    `json:"owner"`
	Name        string `json:"name"`
	SizeInBytes int64  `json:"size_in_bytes"`

	// Filled in by validation and orchestration.
	Destination string `json:"-"`
	TransferID  int    `json:"-"`
}

// DownloadItem is one validated entry of a download initiation request,
// carrying the resolved resource attributes the worker launch needs.
type DownloadItem struct {
	ResourceID   int
	OriginatorID int
	Path         string
	SizeInBytes  int64
	AccessToken  string

	TransferID int
}

// NormalizeUploadItems accepts the upload_info payload as either a single
// object or a list of objects and always returns an ordered slice.
func NormalizeUploadItems(raw json.RawMessage) ([]UploadItem, error) {
	var items []UploadItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var item UploadItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("upload_info must be an object or a list of objects: %w", err)
	}

	return []UploadItem{item}, nil
}
