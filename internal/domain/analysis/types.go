package analysis

// AnomalyRegion mirrors detector anomalies in the public response shape.
type AnomalyRegion struct {
	Region string  `json:"region"`
	Score  float64 `json:"score"`
}

// Details carries the secondary analysis information attached to a report.
type Details struct {
	ProcessingTime float64         `json:"processing_time"`
	ModelVersion   string          `json:"model_version"`
	Anomalies      []AnomalyRegion `json:"anomalies"`
}

// Report is the public analysis result. GenerationMethod is null unless the
// detector attributed the forgery to a technique; HeatmapURL is reserved for
// a future visualization feature and is always null today.
type Report struct {
	IsFake           bool    `json:"is_fake"`
	Confidence       float64 `json:"confidence"`
	GenerationMethod *string `json:"generation_method"`
	HeatmapURL       *string `json:"heatmap_url"`
	Details          Details `json:"details"`
}

// HealthStatus is the health-check projection of model state and static config.
type HealthStatus struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}
