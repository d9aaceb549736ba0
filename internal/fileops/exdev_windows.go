//go:build windows

package fileops

// Windows reports cross-volume renames with its own error codes; the generic
// rename error message is good enough there.
func isCrossDevice(err error) bool {
	return false
}
