package domain

import "time"

type DependencyStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type SystemStatus struct {
	App             string             `json:"app"`
	Environment     string             `json:"environment"`
	Backends        []string           `json:"backends"`
	DatabaseHealthy bool               `json:"database_healthy"`
	RedisHealthy    bool               `json:"redis_healthy"`
	Dependencies    []DependencyStatus `json:"dependencies"`
	ServerTime      time.Time          `json:"server_time"`
}
