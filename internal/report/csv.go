package report

import (
	"encoding/csv"
	"io"
	"strings"

	"fintrack/internal/core"
)

const (
	CSVFileName    = "finance_transactions.csv"
	CSVContentType = "text/csv"
)

var csvHeader = []string{"id", "amount", "description", "category", "date", "type"}

// WriteCSV writes one header line and one row per transaction.
//
// The default layout matches files users already have: text columns wrapped
// in double quotes without escaping embedded quotes, rows joined by "\n" with
// no trailing newline. strict switches to RFC 4180 output.
func WriteCSV(w io.Writer, txs []core.Transaction, strict bool) error {
	if strict {
		return writeStrictCSV(w, txs)
	}
	lines := make([]string, 0, len(txs)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, t := range txs {
		lines = append(lines, t.ID+","+t.Amount.String()+
			`,"`+t.Description+`","`+t.Category+`","`+t.Date.String()+`","`+string(t.Type)+`"`)
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func writeStrictCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txs {
		row := []string{t.ID, t.Amount.String(), t.Description, t.Category, t.Date.String(), string(t.Type)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVRows returns the export as rows of cells, header first.
func CSVRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, append([]string(nil), csvHeader...))
	for _, t := range txs {
		rows = append(rows, []string{t.ID, t.Amount.String(), t.Description, t.Category, t.Date.String(), string(t.Type)})
	}
	return rows
}
