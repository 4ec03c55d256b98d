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

package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware/video"
)

// Video generates a SHA-1 value of successive video frames. Hashes are
// chained: each new frame is hashed together with the hash of the frame
// before it, so the final value fingerprints the whole sequence and not
// just the last frame.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
type Video struct {
	digest [sha1.Size]byte
	buffer []byte
	frames int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{
		buffer: make([]byte, sha1.Size+(video.Width*video.Height)),
	}
}

// Hash implements the digest.Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Video) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.frames = 0
}

// Frames returns the number of frames that have been folded into the hash.
func (dig *Video) Frames() int {
	return dig.frames
}

// Chain folds a completed frame into the hash. The frame is expected to be
// in the two bits per pixel format returned by the video package.
func (dig *Video) Chain(frame []uint8) error {
	if len(frame) != video.Width*video.Height {
		return curated.Errorf("digest: unexpected frame size (%d)", len(frame))
	}

	// chain fingerprints by copying the value of the last fingerprint
	// to the head of the buffer
	copy(dig.buffer, dig.digest[:])
	copy(dig.buffer[sha1.Size:], frame)

	dig.digest = sha1.Sum(dig.buffer)
	dig.frames++

	return nil
}
