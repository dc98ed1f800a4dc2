package barcode

// Bar is a filled rectangle in page units.
type Bar struct {
	X, Width float64
}

// Layout places the bars of modules inside a box of boxWidth starting at x.
// The unit width is boxWidth divided by the total units; the cursor starts
// after the quiet zone and advances over spaces without drawing.
func Layout(modules []Module, x, boxWidth float64) []Bar {
	total := TotalUnits(modules)
	if total == 0 || boxWidth <= 0 {
		return nil
	}
	unit := boxWidth / float64(total)
	cursor := x + float64(QuietZone)*unit
	bars := make([]Bar, 0, len(modules)/2+1)
	for _, m := range modules {
		w := float64(m.Width) * unit
		if m.Bar {
			bars = append(bars, Bar{X: cursor, Width: w})
		}
		cursor += w
	}
	return bars
}

// Canvas is the drawing surface barcode bars are painted on.
type Canvas interface {
	Rect(x, y, w, h float64, style string)
}

// Draw encodes digits and paints its bars at full height into the box.
// Nothing is drawn when digits holds no digit.
func Draw(c Canvas, digits string, x, y, w, h float64) {
	if Normalize(digits) == "" {
		return
	}
	for _, b := range Layout(Encode(digits), x, w) {
		c.Rect(b.X, y, b.Width, h, "F")
	}
}
