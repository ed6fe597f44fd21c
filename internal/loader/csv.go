package loader

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	apperrors "tabcleaner/internal/errors"
)

// csvEncoding pairs an encoding name with its decoder. A nil decoder
// means strict UTF-8.
type csvEncoding struct {
	name    string
	decoder *encoding.Decoder
}

// csvEncodings is the deterministic fallback chain tried in order when
// decoding CSV bytes: strict UTF-8 first, then Latin-1 (ISO 8859-1),
// then Windows-1252. Latin-1 maps every byte, so it is the
// byte-preserving last resort and Windows-1252 is not reached in
// practice.
var csvEncodings = []csvEncoding{
	{name: "utf-8", decoder: nil},
	{name: "latin-1", decoder: charmap.ISO8859_1.NewDecoder()},
	{name: "windows-1252", decoder: charmap.Windows1252.NewDecoder()},
}

func (l *Loader) loadCSV(content []byte) (*Result, error) {
	text, encName, err := decodeText(content)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("decoded CSV content", slog.String("encoding", encName))

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1 // ragged rows are padded later
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrTypeDecode, "malformed CSV content", err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmptyFile, "file contains no data rows")
	}

	header, rows := records[0], records[1:]
	sourceRows := len(rows)
	rows, truncated := l.capRows(rows)

	table, err := buildTable(header, rows)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDecode, "failed to build table from CSV", err)
	}
	return &Result{
		Table:      table,
		Truncated:  truncated,
		SourceRows: sourceRows,
		Encoding:   encName,
	}, nil
}

// decodeText runs the encoding fallback chain and returns the decoded
// bytes along with the name of the encoding that succeeded.
func decodeText(content []byte) ([]byte, string, error) {
	// Strip a UTF-8 BOM if present; spreadsheet exports add one often.
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	for _, enc := range csvEncodings {
		if enc.decoder == nil {
			if utf8.Valid(content) {
				return content, enc.name, nil
			}
			continue
		}
		decoded, err := enc.decoder.Bytes(content)
		if err != nil {
			continue
		}
		return decoded, enc.name, nil
	}
	return nil, "", apperrors.New(apperrors.ErrTypeDecode,
		"no encoding in the fallback list could decode the file")
}
