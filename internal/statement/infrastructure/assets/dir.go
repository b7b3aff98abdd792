package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirProvider serves assets from a local directory.
type DirProvider struct {
	root string
}

// NewDirProvider constructs a provider rooted at dir.
func NewDirProvider(dir string) (*DirProvider, error) {
	if dir == "" {
		return nil, errors.New("dir assets: empty directory")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dir assets: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dir assets: %s is not a directory", dir)
	}
	return &DirProvider{root: dir}, nil
}

func (p *DirProvider) Asset(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(p.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrAssetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("dir assets: %w", err)
	}
	return data, nil
}
