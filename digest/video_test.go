// This file is part of DynGB.
//
// DynGB is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DynGB is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DynGB.  If not, see <https://www.gnu.org/licenses/>.

package digest_test

import (
	"testing"

	"github.com/dyngb/dyngb/digest"
	"github.com/dyngb/dyngb/hardware/video"
	"github.com/dyngb/dyngb/test"
)

func TestChaining(t *testing.T) {
	frame := make([]uint8, video.Width*video.Height)

	dig := digest.NewVideo()
	blank := dig.Hash()

	test.Equate(t, dig.Chain(frame), nil)
	one := dig.Hash()
	if one == blank {
		t.Errorf("hash did not change after first frame")
	}

	// chaining the same frame again must still change the hash
	test.Equate(t, dig.Chain(frame), nil)
	if dig.Hash() == one {
		t.Errorf("hash did not change after second frame")
	}
	test.Equate(t, dig.Frames(), 2)

	// an identical sequence produces an identical hash
	other := digest.NewVideo()
	test.Equate(t, other.Chain(frame), nil)
	test.Equate(t, other.Hash(), one)

	dig.ResetDigest()
	test.Equate(t, dig.Hash(), blank)
	test.Equate(t, dig.Frames(), 0)
}

func TestFrameSize(t *testing.T) {
	dig := digest.NewVideo()
	if dig.Chain(make([]uint8, 10)) == nil {
		t.Errorf("expected error for undersized frame")
	}
}
