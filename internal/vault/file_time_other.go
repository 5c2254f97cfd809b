// file_time_other.go is the fallback for platforms without a birth time;
// created timestamps then come from frontmatter or the modification time.

//go:build !linux && !darwin

package vault

import (
	"os"
	"time"
)

func fileCreationTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
