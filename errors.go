// SPDX-License-Identifier: EPL-2.0

package audwave

import "errors"

var (
	ErrNotLoaded  = errors.New("audwave: no audio loaded")
	ErrDestroyed  = errors.New("audwave: waveform destroyed")
	ErrEmptyRange = errors.New("audwave: empty export range")
)
