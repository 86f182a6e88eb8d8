// Package parsers reads score sheets (XLSX or CSV) into rows the ledger can
// import. A sheet has a header row naming a player column plus either
// front9/back9 point columns or hole columns 1-18; optional "Par" and "SI"
// rows describe the course.
package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported score sheet format")

// ScoreRow is one player line of a sheet. Err is set when the line could not
// be read; other lines are still returned.
type ScoreRow struct {
	Line      int
	Player    string
	Date      string
	FrontNine *int
	BackNine  *int
	Strokes   []int
	Err       error
}

// ParsedSheet is the content of the first sheet.
type ParsedSheet struct {
	Rows        []ScoreRow
	Par         []int
	StrokeIndex []int
}

// Parser reads one file format.
type Parser interface {
	Parse(data []byte) (*ParsedSheet, error)
}

// ParserFactory picks a parser for a file name.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) GetParser(filename string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", "":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
