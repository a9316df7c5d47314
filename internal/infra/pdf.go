package infra

// pdf.go — contract PDF generation using go-pdf/fpdf.
// Produces the A4 storage-contract draft that the contract worker uploads
// to DocuSign: parties, silo, quantity, period, price and total value.
// The output file is saved to storagePath/contrato_{reservaID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"siloshare/internal/model"

	"github.com/go-pdf/fpdf"
)

// GerarContratoPDF writes the contract draft for a confirmed reservation.
// Returns the absolute path to the generated file.
func GerarContratoPDF(reserva *model.Reserva, silo *model.Silo, proprietario *model.Usuario, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("contrato_%s.pdf", reserva.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, "SiloShare", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 7, "Contrato de Armazenagem de Graos", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// ── Parties ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Partes", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Contratante (produtor): %s", reserva.ProdutorNome), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Contratado (proprietario): %s", proprietario.Nome), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Object ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Objeto", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Silo: %s — %s/%s", silo.Nome, silo.Cidade, silo.Estado), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Quantidade: %s t de %s", reserva.Quantidade.StringFixed(2), reserva.TipoGrao), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Periodo: %s a %s",
		reserva.DataInicio.Format("02/01/2006"), reserva.DataFim.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Values ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Valores", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Preco: R$ %s por tonelada/mes", silo.PrecoPorToneladaMes.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, fmt.Sprintf("Valor total: R$ %s", reserva.ValorTotal.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// ── Signature placeholders ────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	half := contentW / 2
	pdf.CellFormat(half, 6, "_______________________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 6, "_______________________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(half, 5, reserva.ProdutorNome, "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 5, proprietario.Nome, "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Referencia da reserva: %s", reserva.ID), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
