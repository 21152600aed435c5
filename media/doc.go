// SPDX-License-Identifier: EPL-2.0

// Package media holds the playable audio resource handed from the loader to
// the players.
package media
