package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput writes each exchange as its own file under dir,
// creating dir if needed. Existing files are left alone.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
