package dto

type HealthDTO struct {
	OK          bool             `json:"ok"`
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	StartedAt   string           `json:"started_at"`
	UptimeSec   int64            `json:"uptime_sec"`
	Storage     StorageStatusDTO `json:"storage"`
	Subscribers int              `json:"sse_subscribers"`
}

type StorageStatusDTO struct {
	Driver         string `json:"driver"`
	SchemaVersion  int    `json:"schema_version,omitempty"`
	SafeMode       bool   `json:"safe_mode,omitempty"`
	SafeModeReason string `json:"safe_mode_reason,omitempty"`
}
