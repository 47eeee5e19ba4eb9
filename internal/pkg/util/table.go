package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/rowdb/rowd/internal/dataset"
	"github.com/rowdb/rowd/internal/protocol"
)

const (
	truncatedStringEnd = " ..."
	nonTextLength      = 20
	maxLength          = 40
)

// PrintDataSet renders a query result as an aligned ASCII table.
func PrintDataSet(w io.Writer, ds *dataset.DataSet) {
	columns := ds.Columns()
	if len(columns) == 0 {
		if ds.RowsAffected() > 0 {
			fmt.Fprintf(w, "Rows affected: %d\n", ds.RowsAffected())
		}
		return
	}

	PrintTableHeader(w, columns)
	for i := 0; i < ds.NumRows(); i++ {
		values, err := ds.Row(i)
		if err != nil {
			break
		}
		PrintTableRow(w, columns, values)
	}
	PrintTableEnd(w, columns)
}

func PrintTableHeader(w io.Writer, columns []protocol.Column) {
	columnSize, tableWidth := computeTableSize(columns)

	// add top horizontal header
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))

	for i, aColumn := range columns {
		// pad with columnSize[j] spaces on the right rather than the left (left-justify the field)
		// an asterisk * in the format specifies that the padding size should be given as an argument
		fmt.Fprintf(w, "| %-*s ", columnSize[i], any(aColumn.Name))
		// new line after last cell in a row
		if i == len(columns)-1 {
			fmt.Fprintf(w, "|\n")
		}
	}

	// add horizontal border bellow the header row
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))
}

func PrintTableRow(w io.Writer, columns []protocol.Column, values []protocol.Value) {
	columnSize, _ := computeTableSize(columns)

	for i, aValue := range values {
		aStringValue := "NULL"
		if aValue.Valid {
			aStringValue = fmt.Sprint(aValue.Value)
		}
		r := []rune(aStringValue)
		if len(r) >= maxLength-len(truncatedStringEnd) {
			aStringValue = string(r[0:maxLength-len(truncatedStringEnd)]) + truncatedStringEnd
		}
		fmt.Fprintf(w, "| %-*s ", columnSize[i], aStringValue)
	}
	fmt.Fprintf(w, "|\n")
}

func PrintTableEnd(w io.Writer, columns []protocol.Column) {
	_, tableWidth := computeTableSize(columns)

	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))
}

func computeTableSize(columns []protocol.Column) ([]int, int) {
	// find max width for each column
	columnSize := make([]int, len(columns))
	for i, aColumn := range columns {
		if aColumn.Kind == protocol.Text {
			columnSize[i] = maxLength
		} else {
			columnSize[i] = nonTextLength
		}
	}

	// left border is | followed by a space, right border is space followed by | (2+2=4)
	// then between each column we have space, |, space (3)
	tableWidth := 4 + (len(columnSize)-1)*3
	for _, columnWidth := range columnSize {
		tableWidth += columnWidth
	}

	return columnSize, tableWidth
}
