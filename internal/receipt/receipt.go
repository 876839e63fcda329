// Package receipt renders committed sales as printable PDF tickets.
package receipt

import (
	"fmt"
	"io"

	"techstore/internal/domain"

	"github.com/go-pdf/fpdf"
)

// Store identifies the business printed in the receipt header.
type Store struct {
	Name  string
	TaxID string
}

var paymentLabels = map[domain.PaymentMethod]string{
	domain.PaymentCash:     "Efectivo",
	domain.PaymentCard:     "Tarjeta",
	domain.PaymentTransfer: "Transferencia",
}

const maxNameRunes = 24

// Render writes an 80mm wide thermal-style receipt for sale to w.
func Render(w io.Writer, store Store, sale *domain.SaleDetail) error {
	if sale == nil {
		return fmt.Errorf("receipt: nil sale")
	}

	height := 110 + float64(len(sale.Items))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(store.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if store.TaxID != "" {
		pdf.CellFormat(contentW, 4, "RUC "+store.TaxID, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, tr("Boleta de Venta"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("N° "+sale.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, sale.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Cliente: "+sale.CustomerName), "", 1, "L", false, 0, "")
	if sale.CustomerDocument != "" {
		pdf.CellFormat(contentW, 4, tr("Documento: "+sale.CustomerDocument), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, tr("Vendedor: "+sale.SellerName), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.50
	col2 := contentW * 0.14
	col3 := contentW * 0.36

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		pdf.CellFormat(col1, 5, tr(truncate(item.ProductName, maxNameRunes)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "S/ "+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 5, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "S/ "+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2, 5, "IGV (18%):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "S/ "+sale.Tax.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "S/ "+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	label, ok := paymentLabels[sale.PaymentMethod]
	if !ok {
		label = string(sale.PaymentMethod)
	}
	pdf.CellFormat(contentW, 4, tr("Forma de pago: "+label), "", 1, "L", false, 0, "")
	if sale.Notes != "" {
		pdf.MultiCell(contentW, 4, tr("Notas: "+sale.Notes), "", "L", false)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("receipt: write pdf: %w", err)
	}
	return nil
}

// Filename is the download name for a sale's receipt.
func Filename(number string) string {
	return fmt.Sprintf("boleta_%s.pdf", number)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
