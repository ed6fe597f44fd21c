package exporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tabcleaner/internal/cleaning"
	"tabcleaner/internal/dataset"
	"tabcleaner/internal/shared/testutil"
)

func exportTable(t *testing.T) (*dataset.Table, []dataset.ColumnProfile) {
	t.Helper()
	tbl, err := dataset.NewTable([]string{"name", "amount", "active"})
	require.NoError(t, err)
	rows := [][]dataset.Value{
		{dataset.String("alice"), dataset.Number(10.5), dataset.Bool(true)},
		{dataset.String("bob"), dataset.Missing(), dataset.Bool(false)},
		{dataset.String("carol"), dataset.Number(3), dataset.Bool(true)},
	}
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}
	profiles := dataset.Profile(tbl)
	tbl.ApplyTypes(profiles)
	return tbl, profiles
}

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return New(logger)
}

func TestWriteCSV(t *testing.T) {
	tbl, _ := exportTable(t)

	var buf bytes.Buffer
	require.NoError(t, newTestExporter(t).WriteCSV(&buf, tbl))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "BOM prefix")

	lines := bytes.Split(bytes.TrimSpace(out[3:]), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "name,amount,active", string(lines[0]))
	assert.Equal(t, "alice,10.5,true", string(lines[1]))
	assert.Equal(t, "bob,,false", string(lines[2]))
}

func TestWriteJSON(t *testing.T) {
	tbl, _ := exportTable(t)

	var buf bytes.Buffer
	require.NoError(t, newTestExporter(t).WriteJSON(&buf, tbl))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)

	assert.Equal(t, "alice", records[0]["name"])
	assert.Equal(t, 10.5, records[0]["amount"])
	assert.Equal(t, true, records[0]["active"])
	assert.Nil(t, records[1]["amount"], "missing cells export as null")
}

func TestWriteWorkbook(t *testing.T) {
	tbl, _ := exportTable(t)

	var buf bytes.Buffer
	require.NoError(t, newTestExporter(t).WriteWorkbook(&buf, tbl))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"name", "amount", "active"}, rows[0])
	assert.Equal(t, "alice", rows[1][0])
}

func TestWriteSummaryWorkbook(t *testing.T) {
	tbl, profiles := exportTable(t)
	summary := dataset.Summarize(tbl, profiles)

	rep := cleaning.NewReport()
	rep.RowsIn = 4
	rep.RowsOut = 3
	rep.DuplicatesRemoved = 1
	rep.AddNotice(cleaning.NoticeFallbackToMode, "name", "filled with mode")

	var buf bytes.Buffer
	require.NoError(t, newTestExporter(t).WriteSummaryWorkbook(&buf, tbl, profiles, summary, rep))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Data Sample", "Statistics", "Data Quality", "Column Info"},
		f.GetSheetList())

	sample, err := f.GetRows("Data Sample")
	require.NoError(t, err)
	assert.Len(t, sample, 4, "header plus all three rows")

	info, err := f.GetRows("Column Info")
	require.NoError(t, err)
	require.NotEmpty(t, info)
	assert.Equal(t, "Column", info[0][0])
}
