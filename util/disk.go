package util

import "fmt"

// EnsureFree returns an error when the filesystem at path has less than
// minFree bytes available. Used as a hard gate before an export starts.
func EnsureFree(path string, minFree uint64) error {
	_, _, free, err := Usage(path)
	if err != nil {
		return fmt.Errorf("failed to check disk space at %s: %v", path, err)
	}
	if free < minFree {
		return fmt.Errorf("not enough disk space at %s: %s free, %s required",
			path, Pretty(free), Pretty(minFree))
	}
	return nil
}

// Pretty formats a byte count as a human-friendly string.
func Pretty(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPEZY"[exp])
}
