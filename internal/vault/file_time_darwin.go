// file_time_darwin.go reads the birth time macOS keeps in Stat_t.

//go:build darwin

package vault

import (
	"os"
	"syscall"
	"time"
)

// fileCreationTime extracts the file birth time from Birthtimespec. It
// returns false when the FileInfo was not produced by a real stat call.
func fileCreationTime(_ string, info os.FileInfo) (time.Time, bool) {
	if info == nil {
		return time.Time{}, false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(stat.Birthtimespec.Sec), int64(stat.Birthtimespec.Nsec)), true
}
