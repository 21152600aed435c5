// SPDX-License-Identifier: EPL-2.0

// Package events is the typed pub/sub used between the engine components
// and the host. Components publish through an Emitter; the facade owns a Bus
// and a Queue in front of it.
package events
