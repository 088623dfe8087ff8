package gradebook

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// Decoder turns raw file bytes into the row grid the parser consumes.
type Decoder interface {
	Rows(data []byte) ([][]string, error)
}

// DecoderFor picks a decoder from the uploaded filename. CSV exports get
// delimiter detection; .xlsx workbooks are read through excelize and feed
// the same header/row pipeline.
func DecoderFor(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return &csvDecoder{}, nil
	case ".xlsx":
		return &xlsxDecoder{}, nil
	default:
		return nil, apperrors.ErrInvalidFileFormat
	}
}

type csvDecoder struct{}

func (d *csvDecoder) Rows(data []byte) ([][]string, error) {
	format := DetectFormat(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = format.Delimiter
	reader.LazyQuotes = true
	// Human-edited spreadsheets routinely have ragged rows.
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

type xlsxDecoder struct{}

func (d *xlsxDecoder) Rows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ErrInvalidFileFormat
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.ErrInvalidFileFormat
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return rows, nil
}
