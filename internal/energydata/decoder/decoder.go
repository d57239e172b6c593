// Package decoder turns the yearly EMS CSV file into typed rows.
package decoder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"enova_backend/internal/energydata/transport"
	"enova_backend/platform/apperr"
	"enova_backend/platform/logger"

	"github.com/gocarina/gocsv"
)

// emsRow is one line of the EMS file as named in its header.
type emsRow struct {
	Knr                             optionalInt  `csv:"Knr"`
	Gnr                             string       `csv:"Gnr"`
	Bnr                             string       `csv:"Bnr"`
	Snr                             string       `csv:"Snr"`
	Fnr                             string       `csv:"Fnr"`
	Andelsnummer                    string       `csv:"Andelsnummer"`
	Bygningsnummer                  string       `csv:"Bygningsnummer"`
	GateAdresse                     string       `csv:"GateAdresse"`
	Postnummer                      optionalInt  `csv:"Postnummer"`
	Poststed                        string       `csv:"Poststed"`
	BruksEnhetsNummer               string       `csv:"BruksEnhetsNummer"`
	Organisasjonsnummer             string       `csv:"Organisasjonsnummer"`
	Bygningskategori                string       `csv:"Bygningskategori"`
	Byggear                         optionalInt  `csv:"Byggear"`
	Energikarakter                  string       `csv:"Energikarakter"`
	Oppvarmingskarakter             string       `csv:"Oppvarmingskarakter"`
	Utstedelsesdato                 optionalDate `csv:"Utstedelsesdato"`
	TypeRegistrering                string       `csv:"TypeRegistrering"`
	Attestnummer                    string       `csv:"Attestnummer"`
	BeregnetLevertEnergiTotaltkWhm2 number       `csv:"BeregnetLevertEnergiTotaltkWhm2"`
	BeregnetFossilandel             string       `csv:"BeregnetFossilandel"`
	Materialvalg                    string       `csv:"Materialvalg"`
	HarEnergiVurdering              flag         `csv:"HarEnergiVurdering"`
	EnergiVurderingDato             optionalDate `csv:"EnergiVurderingDato"`
}

func (r emsRow) record() transport.EmsCsv {
	return transport.EmsCsv{
		Kommunenummer:                   r.Knr.value,
		Gaardsnummer:                    r.Gnr,
		Bruksnummer:                     r.Bnr,
		Seksjonsnummer:                  r.Snr,
		Festenummer:                     r.Fnr,
		Andelsnummer:                    r.Andelsnummer,
		Bygningsnummer:                  r.Bygningsnummer,
		GateAdresse:                     r.GateAdresse,
		Postnummer:                      r.Postnummer.value,
		Poststed:                        r.Poststed,
		BruksEnhetsNummer:               r.BruksEnhetsNummer,
		Organisasjonsnummer:             r.Organisasjonsnummer,
		Bygningskategori:                r.Bygningskategori,
		Byggear:                         r.Byggear.value,
		Energikarakter:                  r.Energikarakter,
		Oppvarmingskarakter:             r.Oppvarmingskarakter,
		Utstedelsesdato:                 r.Utstedelsesdato.value,
		TypeRegistrering:                r.TypeRegistrering,
		Attestnummer:                    r.Attestnummer,
		BeregnetLevertEnergiTotaltkWhm2: float64(r.BeregnetLevertEnergiTotaltkWhm2),
		BeregnetFossilandel:             r.BeregnetFossilandel,
		Materialvalg:                    r.Materialvalg,
		HarEnergiVurdering:              bool(r.HarEnergiVurdering),
		EnergiVurderingDato:             r.EnergiVurderingDato.value,
	}
}

// Columns lists every column the decoder requires, in file order.
var Columns = csvColumns(reflect.TypeOf(emsRow{}))

func csvColumns(t reflect.Type) []string {
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		cols = append(cols, t.Field(i).Tag.Get("csv"))
	}
	return cols
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder parses EMS files.
type Decoder struct {
	log *logger.Logger
}

// New creates a decoder.
func New(log *logger.Logger) *Decoder {
	return &Decoder{log: log}
}

// Decode reads every row from r. Rows without an organization number are
// dropped. Any malformed row fails the whole file. Errors raised by r itself
// are returned unchanged so a broken download keeps its own kind.
func (d *Decoder) Decode(r io.Reader) ([]transport.EmsCsv, error) {
	records, err := decode(r)
	if err == nil {
		return records, nil
	}
	if isReadFailure(err) {
		return nil, err
	}
	d.log.ParseFailure("unable to read csv from response", err)
	return nil, apperr.UnableToParseResponse("could not read the energy certificate file", err)
}

func isReadFailure(err error) bool {
	if _, ok := apperr.As(err); ok {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func decode(r io.Reader) ([]transport.EmsCsv, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	// FieldsPerRecord stays 0: every row must be as wide as the header.
	reader := csv.NewReader(br)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}

	var rows []emsRow
	if err := gocsv.UnmarshalCSV(&replayHeader{header: header, rest: reader}, &rows); err != nil {
		return nil, rowError(header, err)
	}

	records := make([]transport.EmsCsv, 0, len(rows))
	for _, row := range rows {
		if row.Organisasjonsnummer == "" {
			continue
		}
		records = append(records, row.record())
	}
	return records, nil
}

// replayHeader hands gocsv the already validated header followed by the
// remaining rows.
type replayHeader struct {
	header []string
	rest   *csv.Reader
	served bool
}

func (r *replayHeader) Read() ([]string, error) {
	if !r.served {
		r.served = true
		return r.header, nil
	}
	return r.rest.Read()
}

func (r *replayHeader) ReadAll() ([][]string, error) {
	var out [][]string
	if !r.served {
		r.served = true
		out = append(out, r.header)
	}
	rest, err := r.rest.ReadAll()
	if err != nil {
		return nil, err
	}
	return append(out, rest...), nil
}

func checkColumns(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// rowError names the column of a value that failed conversion.
func rowError(header []string, err error) error {
	var parseErr *csv.ParseError
	var valueErr *valueError
	if !errors.As(err, &parseErr) {
		return err
	}
	if !errors.As(err, &valueErr) {
		return fmt.Errorf("row %d: %w", parseErr.Line, err)
	}

	column := ""
	if i := parseErr.Column - 1; i >= 0 && i < len(header) {
		column = header[i]
	}
	return fmt.Errorf("row %d: %w", parseErr.Line, &FieldError{Column: column, Value: valueErr.value, Err: valueErr.err})
}

// MissingColumnsError reports header columns the file lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// FieldError reports a value that could not be converted.
type FieldError struct {
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("column %s: cannot convert %q: %v", e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
