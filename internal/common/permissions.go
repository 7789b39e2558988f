package common

import "os"

// File permission constants for consistent security across the application
const (
	// FilePermissionSecure is used for sensitive files (config, credentials, etc.)
	FilePermissionSecure os.FileMode = 0600

	// FilePermissionNormal is used for non-sensitive files
	FilePermissionNormal os.FileMode = 0644

	// DirPermissionSecure is used for directories containing sensitive files
	DirPermissionSecure os.FileMode = 0700

	// DirPermissionNormal is used for normal directories
	DirPermissionNormal os.FileMode = 0755
)
