// SPDX-License-Identifier: GPL-2.0-or-later

package crc

import "testing"

func TestChecksum(t *testing.T) {
	if got := Checksum([]byte("123456789")); got != 0x29b1 {
		t.Errorf("Checksum(123456789) = %#04x, want 0x29b1", got)
	}
	if got := Checksum(nil); got != Initial {
		t.Errorf("Checksum(nil) = %#04x, want %#04x", got, Initial)
	}
	whole := Checksum([]byte("kart ghost"))
	if got := Update(Update(Initial, []byte("kart ")), []byte("ghost")); got != whole {
		t.Errorf("Update in pieces = %#04x, want %#04x", got, whole)
	}
}
