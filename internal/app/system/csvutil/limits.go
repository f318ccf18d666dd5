// internal/app/system/csvutil/limits.go
package csvutil

// Upload size and row limits for CSV processing. MaxRows also caps an export.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 20000
)
