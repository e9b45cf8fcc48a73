package web

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// validSceneryIDs is the allowlist of scenery hints a chapter may name.
var validSceneryIDs = map[string]bool{
	"default": true, "mountain": true, "bamboo": true, "sect_hall": true,
	"cave": true, "river": true, "valley": true,
}

// handleScenery serves <AssetsDir>/scenery/{id}.png when present and
// otherwise paints a blocky ink-wash backdrop for the id.
func (s *Server) handleScenery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	base := path.Base(r.URL.Path)
	id := strings.TrimSuffix(base, path.Ext(base))
	if !validSceneryIDs[id] {
		http.NotFound(w, r)
		return
	}

	if serveAsset(w, r, filepath.Join(s.assetsBase(), "scenery", id+".png"), "image/png") {
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, paintScenery(id)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(buf.Bytes())
}

// Ink-wash palette: paper, three ink tones, and two accents.
var (
	inkPaper = color.RGBA{0xee, 0xe6, 0xd3, 255}
	inkMist  = color.RGBA{0xc9, 0xc4, 0xb8, 255}
	inkWash  = color.RGBA{0x8a, 0x8d, 0x8a, 255}
	inkDeep  = color.RGBA{0x2e, 0x30, 0x33, 255}
	inkJade  = color.RGBA{0x5b, 0x7f, 0x62, 255}
	inkSeal  = color.RGBA{0xa8, 0x32, 0x2d, 255}
)

const (
	blockPx          = 8
	sceneW, sceneH   = 256, 192
	blocksW, blocksH = sceneW / blockPx, sceneH / blockPx
)

type canvas struct{ img *image.RGBA }

// block fills the 8×8 block at block coords (bx, by); out of range is ignored.
func (c canvas) block(bx, by int, clr color.RGBA) {
	if bx < 0 || by < 0 || bx >= blocksW || by >= blocksH {
		return
	}
	for dy := 0; dy < blockPx; dy++ {
		for dx := 0; dx < blockPx; dx++ {
			c.img.SetRGBA(bx*blockPx+dx, by*blockPx+dy, clr)
		}
	}
}

// rows fills whole rows [from, to).
func (c canvas) rows(from, to int, clr color.RGBA) {
	for by := from; by < to; by++ {
		for bx := 0; bx < blocksW; bx++ {
			c.block(bx, by, clr)
		}
	}
}

// peak draws a mountain with its summit at (cx, top) down to the bottom row.
func (c canvas) peak(cx, top int, clr color.RGBA) {
	for by := top; by < blocksH; by++ {
		half := by - top
		for bx := cx - half; bx <= cx+half; bx++ {
			c.block(bx, by, clr)
		}
	}
}

func paintScenery(id string) image.Image {
	c := canvas{img: image.NewRGBA(image.Rect(0, 0, sceneW, sceneH))}
	c.rows(0, blocksH, inkPaper)

	switch id {
	case "mountain":
		c.rows(blocksH/2, blocksH/2+2, inkMist)
		c.peak(8, 6, inkWash)
		c.peak(22, 3, inkDeep)
		c.peak(30, 9, inkWash)
		c.block(27, 2, inkSeal)
	case "bamboo":
		c.rows(blocksH-2, blocksH, inkMist)
		for _, bx := range []int{3, 7, 12, 18, 21, 27} {
			for by := 2; by < blocksH-1; by++ {
				clr := inkJade
				if by%5 == 0 {
					clr = inkDeep
				}
				c.block(bx, by, clr)
			}
			c.block(bx+1, 4+bx%6, inkJade)
		}
	case "sect_hall":
		c.rows(blocksH-4, blocksH, inkWash)
		for bx := 6; bx < blocksW-6; bx++ {
			c.block(bx, 8, inkDeep)
		}
		for bx := 4; bx < blocksW-4; bx++ {
			c.block(bx, 7, inkDeep)
		}
		for _, bx := range []int{8, 14, 17, 23} {
			for by := 9; by < blocksH-4; by++ {
				c.block(bx, by, inkSeal)
			}
		}
	case "cave":
		c.rows(0, blocksH, inkDeep)
		cx, cy, r := blocksW/2, blocksH, 9
		for by := 0; by < blocksH; by++ {
			for bx := 0; bx < blocksW; bx++ {
				dx, dy := bx-cx, by-cy
				if dx*dx+dy*dy <= r*r {
					c.block(bx, by, inkWash)
				}
			}
		}
	case "river":
		c.peak(6, 8, inkMist)
		c.peak(26, 6, inkMist)
		c.rows(blocksH/2+2, blocksH/2+6, inkWash)
		for bx := 2; bx < blocksW; bx += 5 {
			c.block(bx, blocksH/2+3, inkPaper)
		}
		c.rows(blocksH/2+6, blocksH, inkJade)
	case "valley":
		c.peak(2, 4, inkWash)
		c.peak(30, 4, inkWash)
		c.rows(blocksH-5, blocksH, inkJade)
		c.rows(blocksH/3, blocksH/3+1, inkMist)
	default:
		c.rows(blocksH/2, blocksH/2+1, inkMist)
		c.rows(blocksH-6, blocksH, inkWash)
		c.block(blocksW-4, 3, inkSeal)
	}
	return c.img
}
