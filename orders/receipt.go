package orders

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// DownloadReceipt renders a PDF receipt for one order, with a QR code of
// the order id for pickup verification. Buyer and owning vendor only.
func (s *OrderService) DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, ok := s.authorizedOrder(ctx, w, r, ps.ByName("id"))
	if !ok {
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "KrishiMitra Order Receipt")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Order ID: %s", order.OrderID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Payment ID: %s", order.PaymentID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Placed: %s", order.CreatedAt.Format("Jan 02, 2006")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", order.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deliver to")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, order.Address.FullName)
	pdf.Ln(6)
	pdf.Cell(0, 6, order.Address.StreetAddress)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%s, %s %s", order.Address.City, order.Address.State, order.Address.Zip))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 8, "Item", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, "Price (Rs)", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, p := range order.Products {
		pdf.CellFormat(130, 7, p.ProductName, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", p.Price), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Total charged", "1", 0, "", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", order.TotalAmount), "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	if png, err := qrcode.Encode(order.OrderID, qrcode.Medium, 256); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("order-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("order-qr", 80, pdf.GetY(), 40, 40, false, opts, 0, "")
	} else {
		log.Println("DownloadReceipt qr encode error:", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Println("DownloadReceipt pdf output error:", err)
		http.Error(w, "Failed to generate receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", order.OrderID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Println("DownloadReceipt write error:", err)
	}
}
