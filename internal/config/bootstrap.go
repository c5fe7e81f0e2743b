package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	// Copy defaultPath -> userPath
	src, err := os.Open(defaultPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}

var ErrDataDirLocked = errors.New("data dir is locked by another engine process")

// LockDataDir takes an exclusive lock on dataDir/engine.lock so two engines
// never share one sqlite file. Callers must Unlock the returned lock.
func LockDataDir(dataDir string) (*flock.Flock, error) {
	lk := flock.New(filepath.Join(dataDir, "engine.lock"))
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDataDirLocked, dataDir)
	}
	return lk, nil
}
