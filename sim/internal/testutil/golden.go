// Package testutil provides shared test infrastructure for the sim
// packages: the golden verification dataset and a reference search tree
// used as an independent oracle for grid searches.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sugawarayuuta/sonnet"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one recorded run. Verification holds for every grid
// type and kernel, since all of them evaluate the same lookups.
type GoldenTestCase struct {
	Name         string `json:"name"`
	Isotopes     int    `json:"isotopes"`
	Gridpoints   int    `json:"gridpoints"`
	Lookups      int    `json:"lookups"`
	Method       string `json:"method"`
	Particles    int    `json:"particles"`
	Seed         uint64 `json:"seed"`
	Precision    string `json:"precision"`
	Verification uint64 `json:"verification"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := sonnet.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("golden dataset has no tests")
	}
	return &dataset
}
