package parser

import (
	_ "embed"
	"encoding/csv"
	"strings"
	"sync"

	"github.com/beetlebugorg/gml/internal/dialect"
)

// Element roles in the vocabulary table.
const (
	roleGeometry = "geometry"
	roleShell    = "shell"
	roleSegment  = "segment"
	rolePatch    = "patch"
	rolePosition = "position"
	roleExterior = "exterior"
	roleInterior = "interior"
	roleMember   = "member"
	roleMembers  = "members"
	roleStandard = "standard"
)

//go:embed vocabulary.csv
// Element vocabulary of the three dialects: GML 2.1.2 geometry.xsd, GML 3.1.1
// and GML 3.2.1 geometry*.xsd. One row per local name with its role and a
// 0/1 flag per dialect.
var vocabularyCSV string

type term struct {
	role    string
	dialect [3]bool
}

var (
	vocabulary     map[string]term
	vocabularyOnce sync.Once
)

func loadVocabulary() {
	vocabulary = make(map[string]term)

	records, err := csv.NewReader(strings.NewReader(vocabularyCSV)).ReadAll()
	if err != nil {
		panic("parser: embedded vocabulary is not valid CSV: " + err.Error())
	}

	// Skip header row
	for _, rec := range records[1:] {
		if len(rec) != 5 {
			continue
		}
		vocabulary[rec[0]] = term{
			role:    rec[1],
			dialect: [3]bool{rec[2] == "1", rec[3] == "1", rec[4] == "1"},
		}
	}
}

// lookupTerm returns the role of a GML local name in dialect d. Names that
// are unknown or do not exist in d report ok false.
func lookupTerm(d dialect.Dialect, local string) (role string, ok bool) {
	vocabularyOnce.Do(loadVocabulary)

	t, found := vocabulary[local]
	if !found {
		return "", false
	}
	switch d {
	case dialect.GML2:
		ok = t.dialect[0]
	case dialect.GML31:
		ok = t.dialect[1]
	case dialect.GML32:
		ok = t.dialect[2]
	}
	return t.role, ok
}

// GeometryElements returns the local names of the geometry elements that
// exist in dialect d, in table order.
func GeometryElements(d dialect.Dialect) []string {
	records, _ := csv.NewReader(strings.NewReader(vocabularyCSV)).ReadAll()
	var out []string
	for _, rec := range records[1:] {
		if role, ok := lookupTerm(d, rec[0]); ok && role == roleGeometry {
			out = append(out, rec[0])
		}
	}
	return out
}
