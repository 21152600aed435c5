// SPDX-License-Identifier: EPL-2.0

package regions

import "errors"

var (
	ErrNegativeBound = errors.New("regions: negative bound")
	ErrInvalidColor  = errors.New("regions: invalid color")
	ErrDuplicateID   = errors.New("regions: duplicate id")
	ErrNotFound      = errors.New("regions: region not found")
	ErrDestroyed     = errors.New("regions: segment destroyed")
)
