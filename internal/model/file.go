package model

import "time"

// FileRecord is the metadata of one stored PDF document.
// StorageRef addresses the blob in the content store and never changes after admission,
// even when the display name is renamed.
type FileRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	StorageRef  string    `json:"storage_ref"`
	ContentType string    `json:"content_type"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UsageStats summarizes a user's storage consumption for the dashboard.
type UsageStats struct {
	UsedBytes       int64   `json:"used_bytes"`
	LimitBytes      int64   `json:"limit_bytes"`
	AvailableBytes  int64   `json:"available_bytes"`
	UsagePercent    float64 `json:"usage_percent"`
	TotalFiles      int     `json:"total_files"`
	RecentUploads   int     `json:"recent_uploads"`
	AverageFileSize int64   `json:"average_file_size"`
}
