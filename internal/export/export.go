package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"burza/internal/store"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Rezervace"

// Exporter renders the reservation list as an Excel workbook.
type Exporter struct {
	reservations store.ReservationStore
	dir          string
	logger       *zerolog.Logger
}

func NewExporter(reservations store.ReservationStore, dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{reservations: reservations, dir: dir, logger: logger}
}

// Workbook builds the in-memory workbook, one row per reservation, newest
// first. The caller owns closing the file.
func (e *Exporter) Workbook(ctx context.Context) (*excelize.File, error) {
	reservations, err := e.reservations.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Jméno", "Příjmení", "Telefon", "E-mail",
		"Stav", "Počet stolů", "Stoly", "Vytvořeno", "Aktualizováno",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range reservations {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.FirstName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.LastName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Email)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), len(r.TableIDs))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), strings.Join(r.TableIDs, ", "))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), r.UpdatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "B", "E", 22)
	_ = f.SetColWidth(sheetName, "F", "G", 12)
	_ = f.SetColWidth(sheetName, "H", "H", 30)
	_ = f.SetColWidth(sheetName, "I", "J", 18)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// Save writes the workbook to the export directory and returns its path.
func (e *Exporter) Save(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := e.Workbook(ctx)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("reservations exported")
	return filePath, nil
}
