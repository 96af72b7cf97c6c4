package hosts

import "os"

// Access describes what this process may do with a file. It is computed on
// every call because permissions can change between calls.
type Access struct {
	Path     string
	Readable bool
	Writable bool
}

// Probe checks read and write access to path.
func Probe(path string) Access {
	return Access{
		Path:     path,
		Readable: readable(path),
		Writable: isRegular(path) && writable(path),
	}
}

func readable(path string) bool {
	if !isRegular(path) {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
