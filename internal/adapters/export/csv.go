package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/touchline/internal/domain/model"
)

// WriteEventsCSV writes the event table with a header row.
func WriteEventsCSV(w io.Writer, data *model.EventData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if data != nil {
		row := make([]string, len(model.Columns()))
		for i, r := range data.Records {
			for j, v := range r.Values() {
				row[j] = formatCell(v)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row %d: %w", i, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
