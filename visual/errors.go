// SPDX-License-Identifier: EPL-2.0

package visual

import "errors"

var (
	ErrInvalidDimensions = errors.New("visual: width and height must be positive")
	ErrLayerExists       = errors.New("visual: layer already exists")
	ErrNoLayer           = errors.New("visual: no such layer")
)
