package sheets

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"stockdesk/infrastructure/inventory"
)

// GRNSheetData is everything the printable goods-received-note carries.
type GRNSheetData struct {
	ReceiptID   int64
	Workstation string
	LocationID  int64
	VendorName  string
	InvoiceNo   string
	InvoiceDate string
	Notes       string
	Lines       []inventory.ReceiptLine
	SubmittedAt time.Time
}

func renderGRNSheetPDF(data GRNSheetData, printedAt time.Time) ([]byte, string, error) {
	barcodeValue := fmt.Sprintf("GRN%08d", data.ReceiptID)
	barcodePNG, err := renderCode128PNG(barcodeValue, 1200, 220)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Goods Received Note", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 14, fmt.Sprintf("GRN %d", data.ReceiptID), "", 1, "L", false, 0, "")

	vendor := strings.TrimSpace(data.VendorName)
	if vendor == "" {
		vendor = "-"
	}
	invoice := strings.TrimSpace(data.InvoiceNo)
	if invoice == "" {
		invoice = "-"
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Vendor: "+vendor, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Invoice: "+invoice+"  "+strings.TrimSpace(data.InvoiceDate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Location: %d    Workstation: %s", data.LocationID, data.Workstation), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Submitted: "+data.SubmittedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Printed: "+printedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "grn-barcode-" + strconv.FormatInt(data.ReceiptID, 10)
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 90.0
	imgH := 18.0
	pdf.ImageOptions(imageName, pageW-imgW-12, 14, imgW, imgH, false, opt, 0, "")
	pdf.SetXY(pageW-imgW-12, 14+imgH)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(imgW, 5, barcodeValue, "", 1, "C", false, 0, "")

	pdf.Ln(6)
	writeLinesTable(pdf, data.Lines)

	if notes := strings.TrimSpace(data.Notes); notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, notes, "", "L", false)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, "", err
	}
	return out.Bytes(), barcodeValue, nil
}

func writeLinesTable(pdf *gofpdf.Fpdf, lines []inventory.ReceiptLine) {
	type col struct {
		title string
		width float64
		align string
	}
	cols := []col{
		{"Variant", 24, "L"},
		{"Qty", 18, "R"},
		{"Unit cost", 24, "R"},
		{"Lot", 40, "L"},
		{"Mfg", 26, "L"},
		{"Expiry", 26, "L"},
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	var total int64
	for _, line := range lines {
		unitCost := "-"
		if line.UnitCost != nil {
			unitCost = strconv.FormatFloat(*line.UnitCost, 'f', 2, 64)
		}
		cells := []string{
			strconv.FormatInt(line.VariantID, 10),
			strconv.FormatInt(line.Quantity, 10),
			unitCost,
			orDash(line.LotCode),
			orDash(line.MfgDate),
			orDash(line.ExpDate),
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
		total += line.Quantity
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(cols[0].width, 7, fmt.Sprintf("%d lines", len(lines)), "1", 0, "L", false, 0, "")
	pdf.CellFormat(cols[1].width, 7, strconv.FormatInt(total, 10), "1", 0, "R", false, 0, "")
	pdf.CellFormat(cols[2].width+cols[3].width+cols[4].width+cols[5].width, 7, "", "1", 1, "L", false, 0, "")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
