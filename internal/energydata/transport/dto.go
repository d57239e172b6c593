// Package transport provides DTOs for the energy data domain.
package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmsCsv is one row of the yearly EMS energy certificate file.
// JSON tags define the cached representation.
type EmsCsv struct {
	Kommunenummer     *int   `json:"Kommunenummer"`
	Gaardsnummer      string `json:"Gaardsnummer"`
	Bruksnummer       string `json:"Bruksnummer"`
	Seksjonsnummer    string `json:"Seksjonsnummer"`
	Festenummer       string `json:"Festenummer"`
	Andelsnummer      string `json:"Andelsnummer"`
	Bygningsnummer    string `json:"Bygningsnummer"`
	GateAdresse       string `json:"GateAdresse"`
	Postnummer        *int   `json:"Postnummer"`
	Poststed          string `json:"Poststed"`
	BruksEnhetsNummer string `json:"BruksEnhetsNummer"`

	// Raw value from the file. May contain spaces ("123 456 789").
	Organisasjonsnummer string `json:"Organisasjonsnummer"`

	Bygningskategori    string     `json:"Bygningskategori"`
	Byggear             *int       `json:"Byggear"`
	Energikarakter      string     `json:"Energikarakter"`
	Oppvarmingskarakter string     `json:"Oppvarmingskarakter"`
	Utstedelsesdato     *time.Time `json:"Utstedelsesdato"`
	TypeRegistrering    string     `json:"TypeRegistrering"`
	Attestnummer        string     `json:"Attestnummer"`

	BeregnetLevertEnergiTotaltkWhm2 float64 `json:"BeregnetLevertEnergiTotaltkWhm2"` // kWh/m2

	// Comma-decimal in the source file ("0,25"); kept verbatim.
	BeregnetFossilandel string `json:"BeregnetFossilandel"`

	Materialvalg        string     `json:"Materialvalg"`
	HarEnergiVurdering  bool       `json:"HarEnergiVurdering"`
	EnergiVurderingDato *time.Time `json:"EnergiVurderingDato"`
}

// EmsResponseModel is the evidence representation of an EmsCsv row.
type EmsResponseModel struct {
	Kommunenummer                   *int       `json:"kommunenummer"`
	Gaardsnummer                    string     `json:"gaardsnummer"`
	Bruksnummer                     string     `json:"bruksnummer"`
	Seksjonsnummer                  string     `json:"seksjonsnummer"`
	Festenummer                     string     `json:"festenummer"`
	Andelsnummer                    string     `json:"andelsnummer"`
	Bygningsnummer                  string     `json:"bygningsnummer"`
	GateAdresse                     string     `json:"gateAdresse"`
	Postnummer                      *int       `json:"postnummer"`
	Poststed                        string     `json:"poststed"`
	BruksEnhetsNummer               string     `json:"bruksEnhetsNummer"`
	Organisasjonsnummer             string     `json:"organisasjonsnummer"`
	Bygningskategori                string     `json:"bygningskategori"`
	Byggear                         *int       `json:"byggear"`
	Energikarakter                  string     `json:"energikarakter"`
	Oppvarmingskarakter             string     `json:"oppvarmingskarakter"`
	Utstedelsesdato                 *time.Time `json:"utstedelsesdato"`
	TypeRegistrering                string     `json:"typeRegistrering"`
	Attestnummer                    string     `json:"attestnummer"`
	BeregnetLevertEnergiTotaltkWhm2 float64    `json:"beregnetLevertEnergiTotaltkWhm2"`
	BeregnetFossilandel             string     `json:"beregnetFossilandel"`
	Materialvalg                    string     `json:"materialvalg"`
	HarEnergiVurdering              bool       `json:"harEnergiVurdering"`
	EnergiVurderingDato             *time.Time `json:"energiVurderingDato"`
}

// ToResponseModel maps a file row to its evidence representation.
func ToResponseModel(in EmsCsv) EmsResponseModel {
	return EmsResponseModel{
		Kommunenummer:                   in.Kommunenummer,
		Gaardsnummer:                    in.Gaardsnummer,
		Bruksnummer:                     in.Bruksnummer,
		Seksjonsnummer:                  in.Seksjonsnummer,
		Festenummer:                     in.Festenummer,
		Andelsnummer:                    in.Andelsnummer,
		Bygningsnummer:                  in.Bygningsnummer,
		GateAdresse:                     in.GateAdresse,
		Postnummer:                      in.Postnummer,
		Poststed:                        in.Poststed,
		BruksEnhetsNummer:               in.BruksEnhetsNummer,
		Organisasjonsnummer:             in.Organisasjonsnummer,
		Bygningskategori:                in.Bygningskategori,
		Byggear:                         in.Byggear,
		Energikarakter:                  in.Energikarakter,
		Oppvarmingskarakter:             in.Oppvarmingskarakter,
		Utstedelsesdato:                 in.Utstedelsesdato,
		TypeRegistrering:                in.TypeRegistrering,
		Attestnummer:                    in.Attestnummer,
		BeregnetLevertEnergiTotaltkWhm2: in.BeregnetLevertEnergiTotaltkWhm2,
		BeregnetFossilandel:             in.BeregnetFossilandel,
		Materialvalg:                    in.Materialvalg,
		HarEnergiVurdering:              in.HarEnergiVurdering,
		EnergiVurderingDato:             in.EnergiVurderingDato,
	}
}

// ToResponseModels maps a slice of rows, never returning nil.
func ToResponseModels(in []EmsCsv) []EmsResponseModel {
	out := make([]EmsResponseModel, 0, len(in))
	for _, row := range in {
		out = append(out, ToResponseModel(row))
	}
	return out
}

// FileResponse is the metadata document describing where a year's file lives.
type FileResponse struct {
	FromDate    FlexTime `json:"fromDate"`
	ToDate      FlexTime `json:"toDate"`
	BankFileURL string   `json:"bankFileUrl"`
}

// FlexTime accepts timestamps with or without a zone offset, and plain dates.
type FlexTime struct {
	time.Time
}

var flexTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		f.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range flexTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			f.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a timestamp", raw)
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Time)
}
