package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rowdb/rowd/internal/dataset"
	"github.com/rowdb/rowd/internal/protocol"
)

func TestPrintDataSet(t *testing.T) {
	ds := dataset.FromResultSet(protocol.ResultSet{
		Columns: []protocol.Column{
			{Name: "id", Kind: protocol.Int8},
			{Name: "name", Kind: protocol.Text},
		},
		Rows: [][]protocol.Value{
			{{Valid: true, Value: int64(1)}, {Valid: true, Value: "apple"}},
			{{Valid: true, Value: int64(2)}, {}},
		},
	})

	var buf bytes.Buffer
	PrintDataSet(&buf, ds)
	out := buf.String()

	assert.Contains(t, out, "| id")
	assert.Contains(t, out, "| name")
	assert.Contains(t, out, "apple")
	assert.Contains(t, out, "NULL")
	// Header, two rows, three horizontal borders.
	assert.Equal(t, 6, strings.Count(out, "\n"))
}

func TestPrintDataSetRowsAffectedOnly(t *testing.T) {
	ds := dataset.FromResultSet(protocol.ResultSet{RowsAffected: 3})

	var buf bytes.Buffer
	PrintDataSet(&buf, ds)

	assert.Equal(t, "Rows affected: 3\n", buf.String())
}

func TestPrintDataSetTruncatesLongText(t *testing.T) {
	ds := dataset.FromResultSet(protocol.ResultSet{
		Columns: []protocol.Column{{Name: "blob", Kind: protocol.Text}},
		Rows: [][]protocol.Value{
			{{Valid: true, Value: strings.Repeat("x", 200)}},
		},
	})

	var buf bytes.Buffer
	PrintDataSet(&buf, ds)

	assert.Contains(t, buf.String(), " ...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 50))
}
