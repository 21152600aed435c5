// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var ErrNotConnected = errors.New("player: no source connected")
