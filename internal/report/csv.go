package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// csvHeader is the column order of CSV output. Text comes last so that
// spreadsheet views keep the metadata columns readable.
var csvHeader = []string{
	"chunk_id", "url", "title", "page_title",
	"h1", "h2", "h3", "depth", "char_count", "text",
}

// CSVWriter outputs the collected chunks as CSV, one row per chunk.
// This format is designed for spreadsheet review and quick filtering of
// chunk quality before indexing.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report's chunks in CSV format. The byte count is
// approximate: encoding/csv does not expose exact written sizes, so we
// count the cell contents.
func (w *CSVWriter) Write(report *CrawlReport) (int, error) {
	cw := csv.NewWriter(w.output)

	total := rowLen(csvHeader)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	for _, c := range report.Result.Chunks {
		row := []string{
			c.ChunkID,
			c.URL,
			c.Title,
			c.PageTitle,
			c.H1,
			c.H2,
			c.H3,
			strconv.Itoa(c.Depth),
			strconv.Itoa(c.CharCount),
			c.Text,
		}
		if err := cw.Write(row); err != nil {
			return total, err
		}
		total += rowLen(row)
	}

	cw.Flush()
	return total, cw.Error()
}

func rowLen(row []string) int {
	n := len(row) // separators and newline, roughly
	for _, cell := range row {
		n += len(cell)
	}
	return n
}
