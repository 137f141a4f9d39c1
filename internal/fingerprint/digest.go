// Package fingerprint renders low-resolution proxies of every frame and
// reduces each proxy to a content digest. Frames whose proxies share a
// digest are treated as identical by the doppel package.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // proxies written by other tools
	_ "image/png"
	"math"
	"os"
)

// Digest is the SHA-256 of a proxy's pixel data.
type Digest [sha256.Size]byte

// String returns the hex form used in logs.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex characters.
func (d Digest) Short() string { return d.String()[:12] }

// HashImage digests img. Pixels are read row by row from the top, each as
// four little-endian float32 channels (R, G, B, A in 0..1, not
// premultiplied). Any single channel change in any pixel changes the digest.
func HashImage(img image.Image) Digest {
	b := img.Bounds()
	h := sha256.New()
	row := make([]byte, 16*b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			i = putChannel(row, i, c.R)
			i = putChannel(row, i, c.G)
			i = putChannel(row, i, c.B)
			i = putChannel(row, i, c.A)
		}
		h.Write(row)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func putChannel(buf []byte, i int, v uint16) int {
	f := float32(v) / math.MaxUint16
	binary.LittleEndian.PutUint32(buf[i:], math.Float32bits(f))
	return i + 4
}

// HashFile decodes the proxy at path and digests it.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return Digest{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return HashImage(img), nil
}
