package assets

import (
	"io/fs"
	"testing"
)

func TestGetSchemasFS(t *testing.T) {
	fsys := GetSchemasFS()
	if fsys == nil {
		t.Fatal("GetSchemasFS returned nil")
	}

	data, err := fs.ReadFile(fsys, "config/v1.0.0/filter-set.yaml")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if len(data) == 0 {
		t.Error("Schema file is empty")
	}
}

func TestGetSchemaNames(t *testing.T) {
	infos := GetSchemaNames()
	if len(infos) != len(knownSchemas) {
		t.Fatalf("expected %d schemas, got %d", len(knownSchemas), len(infos))
	}
	if infos[0].Name != "filter-set-v1.0.0" || infos[1].Name != "validator-record-v1.0.0" {
		t.Errorf("unexpected schema order: %+v", infos)
	}
}

func TestGetSchemaMissing(t *testing.T) {
	if _, ok := GetSchema("embedded_schemas/nope.yaml"); ok {
		t.Error("expected missing schema to report ok=false")
	}
}
