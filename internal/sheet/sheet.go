// Package sheet renders a materialized object hierarchy as a printable PDF
// inventory sheet on an old parchment page.
package sheet

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf/v2"

	"gamestate/internal/game"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	rowH      = 18.0
	indent    = 18.0
	iconSize  = 10.0
	fontSize  = 9
	titleSize = 16
)

// Summarizer is implemented by objects that can describe their stats in a
// few words.
type Summarizer interface {
	Summary() string
}

type row struct {
	depth int
	obj   game.Object
	last  bool
}

// Generate returns PDF bytes listing root and everything below it, one row
// per object. root must carry its Children (see game.State.LoadHierarchy).
// A nil root yields nil bytes.
func Generate(root game.Object, title string) ([]byte, error) {
	if root == nil {
		return nil, nil
	}
	return render([]game.Object{root}, title)
}

// GenerateState renders every root tree of s on one sheet.
func GenerateState(s game.State, title string) ([]byte, error) {
	var roots []game.Object
	for _, id := range s.Roots() {
		root, err := s.LoadHierarchy(id)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	if len(roots) == 0 {
		return nil, nil
	}
	return render(roots, title)
}

func render(roots []game.Object, title string) ([]byte, error) {
	var rows []row
	for _, r := range roots {
		rows = flatten(rows, r, 0, true)
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	newPage(pdf, title)

	top := float64(margin) + 56
	y := top
	for i, r := range rows {
		if y+rowH > pageH-margin-40 {
			newPage(pdf, title)
			y = top
		}
		drawRow(pdf, r, y, i%2 == 0)
		y += rowH
	}

	weight, value := totals(rows)
	pdf.SetDrawColor(80, 50, 30)
	pdf.Line(margin+12, y+4, pageW-margin-12, y+4)
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetXY(margin+12, y+8)
	pdf.CellFormat(pageW-2*margin-24, 12,
		fmt.Sprintf("%d objects, total weight %d, total value %d", len(rows), weight, value),
		"", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatten(rows []row, obj game.Object, depth int, last bool) []row {
	rows = append(rows, row{depth: depth, obj: obj, last: last})
	kids := obj.Meta().Children
	for i, c := range kids {
		rows = flatten(rows, c, depth+1, i == len(kids)-1)
	}
	return rows
}

func totals(rows []row) (weight, value int) {
	for _, r := range rows {
		if it, ok := r.obj.(game.Item); ok {
			weight += it.Weight
			value += it.Value
		}
	}
	return weight, value
}

func newPage(pdf *gofpdf.Fpdf, title string) {
	pdf.AddPage()

	// Parchment background
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawWavyBorder(pdf)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+12, margin+8)
	pdf.CellFormat(pageW-2*margin-24, 18, "Inventory", "", 0, "L", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "I", fontSize)
		pdf.SetXY(margin+12, margin+28)
		pdf.CellFormat(pageW-2*margin-24, 12, title, "", 0, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", fontSize)
}

func drawRow(pdf *gofpdf.Fpdf, r row, y float64, shaded bool) {
	if shaded {
		pdf.SetFillColor(236, 222, 190)
		pdf.Rect(margin+12, y, pageW-2*margin-24, rowH, "F")
	}
	x := margin + 16 + float64(r.depth)*indent

	// Tree connector from the parent column
	if r.depth > 0 {
		pdf.SetDrawColor(150, 120, 90)
		px := x - indent + iconSize/2
		pdf.Line(px, y, px, y+rowH/2)
		pdf.Line(px, y+rowH/2, x, y+rowH/2)
		if !r.last {
			pdf.Line(px, y+rowH/2, px, y+rowH)
		}
	}

	drawIcon(pdf, r.obj, x, y+(rowH-iconSize)/2)

	m := r.obj.Meta()
	pdf.SetTextColor(40, 25, 15)
	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetXY(x+iconSize+4, y+3)
	pdf.CellFormat(220, 12, fmt.Sprintf("%s  #%d", m.Name, m.ID), "", 0, "L", false, 0, "")

	if s, ok := r.obj.(Summarizer); ok {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetTextColor(80, 50, 30)
		pdf.SetXY(pageW-margin-172, y+3)
		pdf.CellFormat(156, 12, s.Summary(), "", 0, "R", false, 0, "")
	}
}

// drawIcon draws a small glyph: a head and shoulders for players, a pouch
// for anything else.
func drawIcon(pdf *gofpdf.Fpdf, obj game.Object, x, y float64) {
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.8)
	switch obj.(type) {
	case game.Player:
		pdf.SetFillColor(180, 40, 40)
		pdf.Circle(x+iconSize/2, y+3, 2.6, "FD")
		pdf.Ellipse(x+iconSize/2, y+iconSize, iconSize/2, 3.2, 180, "FD")
	default:
		pdf.SetFillColor(180, 140, 60)
		pdf.Rect(x+1, y+3, iconSize-2, iconSize-3, "FD")
		pdf.Line(x+3, y+3, x+iconSize/2, y)
		pdf.Line(x+iconSize-3, y+3, x+iconSize/2, y)
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// drawWavyBorder draws an organic, tattered black border around the page.
func drawWavyBorder(pdf *gofpdf.Fpdf) {
	pts := wavyRectPoints(margin, margin, pageW-2*margin, pageH-2*margin, 12, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with sinusoidal
// wobble on each side, walking clockwise from the top left.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	edges := []struct {
		at     func(t float64) (float64, float64)
		sx, sy float64
	}{
		{func(t float64) (float64, float64) { return x + t*w, y }, 0.7, 0.5},
		{func(t float64) (float64, float64) { return x + w, y + t*h }, 0.6, 0.4},
		{func(t float64) (float64, float64) { return x + w - t*w, y + h }, 0.8, 0.3},
		{func(t float64) (float64, float64) { return x, y + h - t*h }, 0.5, 0.6},
	}
	pts := make([]gofpdf.PointType, 0, steps*4+1)
	for n, e := range edges {
		i := 1
		if n == 0 {
			i = 0
		}
		for ; i <= steps; i++ {
			px, py := e.at(float64(i) / float64(steps))
			pts = append(pts, gofpdf.PointType{
				X: px + amp*math.Sin(float64(i)*e.sx),
				Y: py + amp*math.Cos(float64(i)*e.sy),
			})
		}
	}
	return pts
}
