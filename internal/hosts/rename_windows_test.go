//go:build windows

package hosts

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/windows"
)

func TestRenameRefused_SharingViolation(t *testing.T) {
	err := &os.LinkError{Op: "rename", Old: "a", New: "b", Err: windows.ERROR_SHARING_VIOLATION}
	assert.True(t, renameRefused(err))
	assert.True(t, renameRefused(fmt.Errorf("wrapped: %w", &os.LinkError{Op: "rename", Err: windows.ERROR_LOCK_VIOLATION})))
	assert.True(t, renameRefused(&os.LinkError{Op: "rename", Err: windows.ERROR_ACCESS_DENIED}))
	assert.False(t, renameRefused(&os.LinkError{Op: "rename", Err: windows.ERROR_DISK_FULL}))
}
