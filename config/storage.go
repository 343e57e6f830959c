package config

// StorageConfig locates the engine's own persistence. Empty paths select
// in-memory stores, which lose data on restart.
type StorageConfig struct {
	// RunStorePath is the SQLite file holding recommendation runs.
	RunStorePath string `json:"run_store_path"`
	// FeedbackStorePath is the SQLite file holding outcomes and feedback.
	FeedbackStorePath string `json:"feedback_store_path"`
}
