// Package mapgen renders a playthrough's trail of chapters as a printable
// PDF scroll, one ink sketch per chapter visited.
package mapgen

import (
	"bytes"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"xianxia/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	sceneSize = 56.0
	pathStep  = 70.0
	perRow    = 6
	fontSize  = 8
	titleSize = 16
	labelSize = 7
	maxLabel  = 18
)

// Stop is one chapter on the scroll.
type Stop struct {
	ID      string
	Label   string
	Scenery string
	Battle  bool
	Current bool
}

// Stops resolves the visited chapter ids against the story. Ids the story no
// longer knows are kept with the default sketch. With no trail, currentID is
// the only stop.
func Stops(st *game.Story, visited []string, currentID string) []Stop {
	trail := visited
	if len(trail) == 0 && currentID != "" {
		trail = []string{currentID}
	}
	stops := make([]Stop, 0, len(trail))
	for i, id := range trail {
		s := Stop{ID: id, Label: label(id, ""), Scenery: "default"}
		if n := st.Node(id); n != nil {
			s.Label = label(id, n.Title)
			if n.Assets.Scenery != "" {
				s.Scenery = n.Assets.Scenery
			}
			s.Battle = n.Battle != nil || n.HasBattle()
		}
		s.Current = i == len(trail)-1 && id == currentID
		stops = append(stops, s)
	}
	return stops
}

func label(id, title string) string {
	l := title
	if l == "" {
		l = strings.ReplaceAll(id, "_", " ")
	}
	l = strings.ToUpper(l)
	if r := []rune(l); len(r) > maxLabel {
		l = string(r[:maxLabel-3]) + "..."
	}
	return l
}

// Generate returns the PDF bytes of the journey scroll. A nil story yields
// nil bytes.
func Generate(st *game.Story, visited []string, currentID, title string) ([]byte, error) {
	if st == nil {
		return nil, nil
	}
	stops := Stops(st, visited, currentID)
	positions := layout(len(stops))

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Rice paper
	pdf.SetFillColor(238, 230, 211)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawScrollBorder(pdf)

	pdf.SetDrawColor(46, 48, 51)
	pdf.SetTextColor(46, 48, 51)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(pageW-margin-160, margin+2)
	pdf.CellFormat(160, 14, "Path of Cultivation", "", 0, "R", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetXY(pageW-margin-160, margin+18)
		pdf.CellFormat(160, 10, title, "", 0, "R", false, 0, "")
	}
	drawSeal(pdf, pageW-margin-30, margin+50)

	// Brush stroke joining the stops
	pdf.SetDrawColor(90, 90, 90)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 0; i < len(positions)-1; i++ {
		pdf.Line(positions[i][0], positions[i][1], positions[i+1][0], positions[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)

	for i, s := range stops {
		x, y := positions[i][0], positions[i][1]
		drawScene(pdf, x, y, s)
		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(30, 30, 30)
		pdf.SetXY(x-sceneSize/2-4, y+sceneSize/2+4)
		pdf.CellFormat(sceneSize+8, 10, s.Label, "", 0, "C", false, 0, "")
		if s.Current {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetXY(x-sceneSize/2, y+sceneSize/2+14)
			pdf.CellFormat(sceneSize, 8, "You are here", "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// layout winds the stops back and forth across the page, perRow to a row.
func layout(n int) [][2]float64 {
	positions := make([][2]float64, n)
	x0 := float64(margin) + sceneSize
	y0 := float64(margin) + 100
	for i := range positions {
		row, col := i/perRow, i%perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		positions[i][0] = x0 + float64(col)*pathStep
		positions[i][1] = y0 + float64(row)*pathStep
	}
	return positions
}

// drawScrollBorder draws the roller bars at the top and bottom and a thin
// frame between them.
func drawScrollBorder(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(92, 64, 51)
	pdf.Rect(margin-10, margin-18, pageW-2*margin+20, 10, "F")
	pdf.Rect(margin-10, pageH-margin+8, pageW-2*margin+20, 10, "F")
	pdf.SetDrawColor(46, 48, 51)
	pdf.SetLineWidth(0.8)
	pdf.Rect(margin, margin, pageW-2*margin, pageH-2*margin, "D")
	pdf.SetLineWidth(1)
}

// drawSeal stamps a red square seal with a simple mark.
func drawSeal(pdf *gofpdf.Fpdf, cx, cy float64) {
	const half = 14.0
	pdf.SetFillColor(168, 50, 45)
	pdf.Rect(cx-half, cy-half, 2*half, 2*half, "F")
	pdf.SetDrawColor(238, 230, 211)
	pdf.SetLineWidth(1.5)
	pdf.Line(cx-half/2, cy-half/2, cx+half/2, cy-half/2)
	pdf.Line(cx, cy-half/2, cx, cy+half/2)
	pdf.Line(cx-half/2, cy+half/2, cx+half/2, cy+half/2)
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(46, 48, 51)
}

func drawScene(pdf *gofpdf.Fpdf, x, y float64, s Stop) {
	r := sceneSize / 2.0
	if s.Current {
		pdf.SetDrawColor(168, 50, 45)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4.0, "D")
	}
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(1.2)
	switch s.Scenery {
	case "mountain":
		drawMountain(pdf, x, y, r)
	case "bamboo":
		drawBamboo(pdf, x, y, r)
	case "sect_hall":
		drawHall(pdf, x, y, r)
	case "cave":
		drawCave(pdf, x, y, r)
	case "river":
		drawRiver(pdf, x, y, r)
	case "valley":
		drawValley(pdf, x, y, r)
	default:
		pdf.Circle(x, y, r*0.35, "D")
	}
	pdf.SetLineWidth(1)
	if s.Battle {
		drawCrossedSwords(pdf, x, y, r)
	}
	pdf.SetDrawColor(46, 48, 51)
}

func drawMountain(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Polygon([]gofpdf.PointType{
		{X: x - r*0.8, Y: y + r*0.4}, {X: x - r*0.2, Y: y - r*0.5}, {X: x + r*0.2, Y: y + r*0.4},
	}, "D")
	pdf.Polygon([]gofpdf.PointType{
		{X: x - r*0.1, Y: y + r*0.4}, {X: x + r*0.4, Y: y - r*0.2}, {X: x + r*0.8, Y: y + r*0.4},
	}, "D")
}

func drawBamboo(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.4, 0, r * 0.4} {
		top := y - r*0.5 + float64(i)*3
		pdf.Line(x+dx, y+r*0.5, x+dx, top)
		for ny := top + 6; ny < y+r*0.5; ny += 8 {
			pdf.Line(x+dx-2, ny, x+dx+2, ny)
		}
	}
}

func drawHall(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.4, y-r*0.1, r*0.8, r*0.5, "D")
	// Upturned eaves
	pdf.Line(x-r*0.7, y-r*0.15, x+r*0.7, y-r*0.15)
	pdf.Line(x-r*0.7, y-r*0.15, x-r*0.8, y-r*0.3)
	pdf.Line(x+r*0.7, y-r*0.15, x+r*0.8, y-r*0.3)
	pdf.Line(x-r*0.5, y-r*0.15, x, y-r*0.45)
	pdf.Line(x, y-r*0.45, x+r*0.5, y-r*0.15)
}

func drawCave(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x, y+r*0.3, r*0.8, r*0.6, 0, 0, 180, "D")
	pdf.Line(x-r*0.8, y+r*0.3, x+r*0.8, y+r*0.3)
}

func drawRiver(pdf *gofpdf.Fpdf, x, y, r float64) {
	for row := -1; row <= 1; row++ {
		oy := y + float64(row)*6
		var prevX, prevY float64
		for i := 0; i <= 8; i++ {
			px := x - r*0.8 + float64(i)*r*0.2
			py := oy + 2*math.Sin(float64(i))
			if i > 0 {
				pdf.Line(prevX, prevY, px, py)
			}
			prevX, prevY = px, py
		}
	}
}

func drawValley(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Line(x-r*0.8, y-r*0.4, x-r*0.1, y+r*0.3)
	pdf.Line(x+r*0.8, y-r*0.4, x+r*0.1, y+r*0.3)
	pdf.Line(x-r*0.1, y+r*0.3, x+r*0.1, y+r*0.3)
}

func drawCrossedSwords(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetDrawColor(168, 50, 45)
	pdf.SetLineWidth(1.5)
	pdf.Line(x-r*0.4, y-r*0.4, x+r*0.4, y+r*0.4)
	pdf.Line(x-r*0.4, y+r*0.4, x+r*0.4, y-r*0.4)
	pdf.SetLineWidth(1)
}
