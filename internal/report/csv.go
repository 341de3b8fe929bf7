package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/niatrack-data/pkg/trips/models"
)

const localTimeLayout = "2006-01-02 15:04:05"

// WriteCSV serializes the wide table: one header row with columns in
// first-seen order, one line per trip. Stations the trip never visited are
// emitted as empty fields.
func WriteCSV(w io.Writer, rep *models.Report, opts Options) error {
	cw := csv.NewWriter(w)

	header := []string{opts.TripIDKey}
	header = append(header, opts.AttrKeys...)
	header = append(header, rep.Columns...)
	header = append(header, "ingreso", "salida", "permanencia_horas", "proceso_minutos")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rep.Wide {
		record := make([]string, 0, len(header))
		record = append(record, row.NIA)
		for _, key := range opts.AttrKeys {
			record = append(record, row.Attrs[key])
		}
		for _, column := range rep.Columns {
			if minutes, ok := row.Stations[column]; ok {
				record = append(record, formatFloat(minutes))
			} else {
				record = append(record, "")
			}
		}
		record = append(record,
			row.EntryLocal.Format(localTimeLayout),
			row.ExitLocal.Format(localTimeLayout),
			formatFloat(row.PermanenceHours),
			formatFloat(row.ProcessingMinutes),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row for trip %s: %w", row.NIA, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the wide table to path, creating parent directories
// as needed. The write goes through a temp file so a crashed run never
// leaves a truncated snapshot behind.
func WriteCSVFile(path string, rep *models.Report, opts Options) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "report_*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if err := WriteCSV(tempFile, rep, opts); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("moving snapshot into place: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
