package tablemap

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const goodYaml = `
datasets:
  - name: orders
    table: OrdersTbl
    folder: /orders/
  - name: clients
    table: dbo.Clients
    folder: /clients/
  - name: assets
    table: ee.dbo.Assets
    folder: assets
`

func TestParseKeepsOrder(t *testing.T) {
	tm, err := Parse([]byte(goodYaml))
	if err != nil {
		t.Fatal(err)
	}
	if tm.Len() != 3 {
		t.Fatalf("expected 3 datasets; got %v", tm.Len())
	}
	expected := []string{"orders", "clients", "assets"}
	for idx, d := range tm.Datasets() {
		if d.Name != expected[idx] {
			t.Fatalf("dataset %v: expected %q; got %q", idx, expected[idx], d.Name)
		}
	}
	d, ok := tm.Get("clients")
	if !ok || d.Table != "dbo.Clients" || d.Folder != "/clients/" {
		t.Fatalf("unexpected dataset: %v", d)
	}
}

func TestParseJSON(t *testing.T) {
	tm, err := Parse([]byte(`{"datasets":[{"name":"orders","table":"OrdersTbl","folder":"/orders/"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := tm.Get("orders"); d.Table != "OrdersTbl" {
		t.Fatalf("unexpected dataset: %v", d)
	}
}

func TestParseRejectsBadMaps(t *testing.T) {
	cases := map[string]string{
		"duplicate name": `
datasets:
  - {name: orders, table: A, folder: /a/}
  - {name: orders, table: B, folder: /b/}`,
		"missing table":   `datasets: [{name: orders, folder: /a/}]`,
		"missing folder":  `datasets: [{name: orders, table: A}]`,
		"injection":       `datasets: [{name: orders, table: "A; drop table B", folder: /a/}]`,
		"too many parts":  `datasets: [{name: orders, table: a.b.c.d, folder: /a/}]`,
		"parent folder":   `datasets: [{name: orders, table: A, folder: ../etc}]`,
		"bad name":        `datasets: [{name: "../x", table: A, folder: /a/}]`,
		"no datasets":     `datasets: []`,
		"not a table map": `: : :`,
	}
	for desc, y := range cases {
		if _, err := Parse([]byte(y)); err == nil {
			t.Fatalf("%v: expected an error", desc)
		}
	}
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "tablemap-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	p := filepath.Join(dir, "datasets.yaml")
	if err := ioutil.WriteFile(p, []byte(goodYaml), 0644); err != nil {
		t.Fatal(err)
	}
	tm, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if tm.Len() != 3 {
		t.Fatalf("expected 3 datasets; got %v", tm.Len())
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestFilter(t *testing.T) {
	tm, err := Parse([]byte(goodYaml))
	if err != nil {
		t.Fatal(err)
	}
	f, err := tm.Filter([]string{"assets", "orders"})
	if err != nil {
		t.Fatal(err)
	}
	ds := f.Datasets()
	if len(ds) != 2 || ds[0].Name != "orders" || ds[1].Name != "assets" {
		t.Fatalf("expected map order to be preserved; got %v", ds)
	}
	if _, err := tm.Filter([]string{"nope"}); err == nil {
		t.Fatal("expected an error filtering an unknown dataset")
	}
}
