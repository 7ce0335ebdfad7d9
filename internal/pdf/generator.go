package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/amana-asso/delivery-service/internal/model"
)

// QRProvider renders the scannable status code for one stop.
type QRProvider interface {
	StatusPNG(familyID int64, occasion, date string, status model.DeliveryStatus, size int) ([]byte, error)
}

// Generator renders printable route sheets, one page per driver, with
// a QR code per stop that marks the delivery done when scanned.
type Generator struct {
	qr QRProvider
}

func NewGenerator(qr QRProvider) *Generator {
	return &Generator{qr: qr}
}

func (g *Generator) Generate(sheet model.RouteSheet) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	dateStr := sheet.Date.Format("2006-01-02")

	for _, route := range sheet.Routes {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Feuille de route - %s", sheet.Occasion)), "", 1, "C", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Livreur : %s", route.Driver.FullName())), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Secteur : %s", safeValue(route.Driver.SectorName))), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Date : %s", formatDate(sheet.Date))), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		headers := []string{"#", "Famille", "Adresse", "Parts", "Jouets"}
		colWidths := []float64{10, 45, 85, 15, 15}
		drawTableRow(pdf, tr, headers, colWidths, true)

		for _, stop := range route.Stops {
			row := []string{
				fmt.Sprintf("%d", stop.Order),
				stop.FamilyName,
				stop.Address,
				fmt.Sprintf("%d", stop.Parts),
				formatBool(stop.WithChild),
			}
			drawTableRow(pdf, tr, row, colWidths, false)
		}

		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr("Étiquettes de livraison"), "", 1, "L", false, 0, "")

		if err := g.drawLabels(pdf, tr, sheet.Occasion, dateStr, route); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawLabels lays out one QR label per stop, three per row. Scanning
// the code marks the delivery as delivered.
func (g *Generator) drawLabels(pdf *gofpdf.Fpdf, tr func(string) string, occasion, date string, route model.DriverRoute) error {
	const labelWidth = 60.0
	const qrSize = 30.0

	perRow := 3
	for i, stop := range route.Stops {
		col := i % perRow
		if col == 0 && pdf.GetY() > 230 {
			pdf.AddPage()
		}

		x := 15 + float64(col)*labelWidth
		y := pdf.GetY()

		png, err := g.qr.StatusPNG(stop.FamilyID, occasion, date, model.DeliveryStatusDelivered, 300)
		if err != nil {
			return fmt.Errorf("qr for family %d: %w", stop.FamilyID, err)
		}

		name := fmt.Sprintf("qr-%s-%d", date, stop.FamilyID)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions(name, x, y, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(x, y+qrSize)
		pdf.CellFormat(labelWidth, 4, tr(fmt.Sprintf("%d. %s", stop.Order, stop.FamilyName)), "", 0, "L", false, 0, "")
		pdf.SetXY(x, y+qrSize+4)
		pdf.CellFormat(labelWidth, 4, tr(fmt.Sprintf("%d part(s)", stop.Parts)), "", 0, "L", false, 0, "")

		if col == perRow-1 || i == len(route.Stops)-1 {
			pdf.SetXY(15, y+qrSize+10)
		} else {
			pdf.SetXY(x+labelWidth, y)
		}
	}

	return nil
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	for i, col := range cols {
		align := "L"
		if i == 0 || i > 2 {
			align = "C"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatBool(value bool) string {
	if value {
		return "Oui"
	}
	return "Non"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}
