package wsl

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// defaultMarker is appended by wsl.exe to the default distribution's name.
const defaultMarker = "(Default)"

// Distros lists the installed WSL distributions.
func (r *Resolver) Distros(ctx context.Context) ([]string, error) {
	stdout, _, err := r.exec(ctx, "-l", "--all")
	if err != nil {
		return nil, err
	}
	return ParseDistros(stdout)
}

// ParseDistros parses `wsl.exe -l --all` output. wsl.exe writes UTF-16LE;
// plain UTF-8 output is accepted as well. The header line is skipped.
func ParseDistros(output []byte) ([]string, error) {
	text, err := decodeOutput(output)
	if err != nil {
		return nil, &DiscoveryError{
			Kind:    KindMalformed,
			Message: "Unable to decode distro list: " + err.Error(),
			Err:     err,
		}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var distros []string
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), defaultMarker))
		if line != "" {
			distros = append(distros, line)
		}
	}
	return distros, nil
}

func decodeOutput(output []byte) (string, error) {
	if !looksUTF16(output) {
		return string(output), nil
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, err := decoder.Bytes(output)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// looksUTF16 reports whether output carries a UTF-16LE BOM or the zero high
// bytes of UTF-16LE encoded ASCII.
func looksUTF16(output []byte) bool {
	if bytes.HasPrefix(output, []byte{0xFF, 0xFE}) {
		return true
	}
	return len(output) >= 2 && len(output)%2 == 0 && output[1] == 0
}
