//go:build windows

package hosts

import "os"

// writable opens the file for writing without truncating it; Windows has no
// access(2) equivalent that honours ACLs and the read-only attribute.
func writable(path string) bool {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	file.Close()
	return true
}
