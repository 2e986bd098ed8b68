// Package tablemap loads the static mapping of dataset names to source tables and output folders.
package tablemap

import (
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/helper"
)

// DatasetSpec is one table-to-file extraction unit.
type DatasetSpec struct {
	Name   string `json:"name" errorTxt:"dataset name" mandatory:"yes"`
	Table  string `json:"table" errorTxt:"dataset table" mandatory:"yes"`
	Folder string `json:"folder" errorTxt:"dataset folder" mandatory:"yes"`
}

func (d DatasetSpec) String() string {
	return fmt.Sprintf("%v (table=%v; folder=%v)", d.Name, d.Table, d.Folder)
}

// definition is the on-disk shape of the table map, in YAML or JSON.
type definition struct {
	Datasets []DatasetSpec `json:"datasets"`
}

// TableMap is an ordered, read-only set of DatasetSpec keyed by name.
type TableMap struct {
	m *om.OrderedMap
}

var reDatasetName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Load reads and validates the table map file at path.
func Load(path string) (*TableMap, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read table map %q", path)
	}
	t, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid table map %q", path)
	}
	return t, nil
}

// Parse converts YAML or JSON bytes into a validated TableMap preserving the order of datasets.
func Parse(b []byte) (*TableMap, error) {
	d := definition{}
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return New(d.Datasets...)
}

// New builds a validated TableMap from the supplied datasets in order.
func New(datasets ...DatasetSpec) (*TableMap, error) {
	t := &TableMap{m: om.NewOrderedMap()}
	if len(datasets) == 0 {
		return nil, errors.New("no datasets found")
	}
	for idx, d := range datasets {
		d.Name = strings.TrimSpace(d.Name)
		d.Table = strings.TrimSpace(d.Table)
		d.Folder = strings.TrimSpace(d.Folder)
		if err := validateDataset(d); err != nil {
			return nil, errors.Wrapf(err, "dataset %v", idx+1)
		}
		if _, exists := t.m.Get(d.Name); exists {
			return nil, fmt.Errorf("duplicate dataset name %q", d.Name)
		}
		t.m.Set(d.Name, d)
	}
	return t, nil
}

func validateDataset(d DatasetSpec) error {
	if err := helper.ValidateStructIsPopulated(d); err != nil {
		return err
	}
	if !reDatasetName.MatchString(d.Name) {
		return fmt.Errorf("invalid dataset name %q: use letters, digits, '_', '-' or '.'", d.Name)
	}
	if !helper.IsValidTableIdentifier(d.Table) {
		return fmt.Errorf("invalid table identifier %q for dataset %q", d.Table, d.Name)
	}
	for _, p := range strings.Split(strings.ReplaceAll(d.Folder, `\`, "/"), "/") {
		if p == ".." {
			return fmt.Errorf("folder %q for dataset %q must not contain '..'", d.Folder, d.Name)
		}
	}
	return nil
}

// Datasets returns all datasets in map order.
func (t *TableMap) Datasets() []DatasetSpec {
	retval := make([]DatasetSpec, 0, t.m.Len())
	iter := t.m.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Value.(DatasetSpec))
	}
	return retval
}

// Get returns the dataset with the given name.
func (t *TableMap) Get(name string) (DatasetSpec, bool) {
	v, ok := t.m.Get(name)
	if !ok {
		return DatasetSpec{}, false
	}
	return v.(DatasetSpec), true
}

// Len returns the number of datasets.
func (t *TableMap) Len() int {
	return t.m.Len()
}

// Filter returns a new TableMap containing only the named datasets, preserving map order.
// An error is returned if any name is not found.
func (t *TableMap) Filter(names []string) (*TableMap, error) {
	if len(names) == 0 {
		return t, nil
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := t.m.Get(n); !ok {
			return nil, fmt.Errorf("dataset %q not found in table map", n)
		}
		want[n] = struct{}{}
	}
	retval := &TableMap{m: om.NewOrderedMap()}
	for _, d := range t.Datasets() {
		if _, ok := want[d.Name]; ok {
			retval.m.Set(d.Name, d)
		}
	}
	return retval, nil
}
