// Package assets gives access to the files embedded in the binary, like the
// report template.
package assets

import (
	"embed"
	"io/fs"

	"github.com/pkg/errors"
)

var efs *embed.FS

func GetData() *embed.FS {
	return efs
}

func UpdateData(d *embed.FS) {
	efs = d
}

// ReadFile reads a file from the embedded data.
func ReadFile(path string) ([]byte, error) {
	if efs == nil {
		return nil, errors.New("embedded data is not loaded")
	}
	data, err := efs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read embedded file %s", path)
	}
	return data, nil
}

// GetAllFilenames return all file names from an path in embeded EFS.
func GetAllFilenames(efs *embed.FS, path string) (files []string, err error) {
	if err := fs.WalkDir(efs, path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
