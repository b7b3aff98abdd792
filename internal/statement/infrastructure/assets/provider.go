package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrAssetNotFound is returned when no asset exists under a name.
var ErrAssetNotFound = errors.New("assets: not found")

// Provider loads asset bytes by name.
type Provider interface {
	Asset(ctx context.Context, name string) ([]byte, error)
}

// validateName rejects names that could escape the asset root.
func validateName(name string) error {
	if name == "" {
		return errors.New("assets: empty name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.HasPrefix(name, "..") {
		return fmt.Errorf("assets: invalid name %q", name)
	}
	return nil
}
