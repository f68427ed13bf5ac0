// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDecideBodySize caps a single decision request. Documents carried
	// inline (resource/proposed) are small; anything near this limit is
	// malformed or hostile.
	MaxDecideBodySize = 1 << 20 // 1 MB

	// MaxBatchBodySize caps a batch decision request.
	MaxBatchBodySize = 4 << 20 // 4 MB

	// MaxConsoleFormSize caps operator console form submissions.
	MaxConsoleFormSize = 1 << 20 // 1 MB
)
