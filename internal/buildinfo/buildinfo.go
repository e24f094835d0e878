package buildinfo

import "time"

// Set via -ldflags "-X github.com/xelth-com/ongoingwms/internal/buildinfo.CommitHash=..."
var (
	Version    = "dev"
	BuildTime  string
	CommitHash string
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC()

// Info is the build and uptime summary reported by the health endpoint.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"buildTime": BuildTime,
		"commit":    CommitHash,
		"startedAt": StartTime.Format(time.RFC3339),
		"uptime":    time.Since(StartTime).Truncate(time.Second).String(),
	}
}
