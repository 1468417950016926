package pdf2html

import (
	"os"
	"path/filepath"
)

// writeFileAtomic writes data next to dst under a ".part" suffix and
// promotes it with a rename. A failed write never replaces an
// existing dst.
func writeFileAtomic(dst string, data []byte) error {
	if dir := filepath.Dir(dst); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := dst + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
