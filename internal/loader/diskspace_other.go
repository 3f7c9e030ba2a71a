//go:build !unix && !windows

package loader

import "errors"

func availableSpace(dir string) (int64, error) {
	return 0, errors.ErrUnsupported
}
