package io

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CreateAll creates (or truncates) the file name, with its missing parent directories.
//
// fmod is the mode of the file. dmod is the mode of directories created newly;
// existing directories are left as they are.
func CreateAll(name string, fmod os.FileMode, dmod os.FileMode) (*os.File, error) {
	dirname := filepath.Dir(name)
	if err := os.MkdirAll(dirname, dmod); err != nil {
		return nil, err
	}

	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fmod)
}

// DirCopy copies files under src into dest, keeping the directory structure.
//
// Directories are created with the mode of the source directory.
// Existing files in dest are overwritten.
func DirCopy(src string, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := CreateAll(target, info.Mode().Perm(), 0755)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
