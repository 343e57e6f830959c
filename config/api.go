package config

// APIConfig configures the HTTP surface.
type APIConfig struct {
	// Addr is the listen address of the JSON API.
	Addr string `json:"addr"`
	// Token guards the API with a bearer token; empty disables the check.
	Token string `json:"token"`
	// PrometheusEnabled exposes /metrics on a dedicated listener.
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
