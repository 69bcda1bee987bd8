// SPDX-License-Identifier: GPL-2.0-or-later

// Package protocol is the replicated kart state and its wire encoding.
package protocol

const (
	// Version is sent in every message; peers drop other versions.
	Version = 1

	// Message kinds.
	KindFull  = 0
	KindDelta = 1
)
