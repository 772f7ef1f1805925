package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CheckAndMkdir ensures dir exists, creating it (and its parents) if
// necessary.
func CheckAndMkdir(dir string) error {
	stat, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err1 := os.MkdirAll(dir, 0755); err1 != nil {
			return err1
		}
		stat, _ = os.Stat(dir)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func DeleteDir(path string) {
	_ = os.RemoveAll(path)
}

// SizeOfDir walks path and sums the size of every regular file under it,
// used to report a backing file's on-disk footprint.
func SizeOfDir(path string) int64 {
	res := int64(0)
	err := filepath.Walk(path, func(p string, info fs.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			res += info.Size()
		}
		return err
	})
	if err != nil {
		return -1
	}
	return res
}
