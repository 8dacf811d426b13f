package assets

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed embedded_schemas
var Schemas embed.FS

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// knownSchemas maps registry names to embed paths.
var knownSchemas = map[string]string{
	"filter-set-v1.0.0":       "embedded_schemas/config/v1.0.0/filter-set.yaml",
	"validator-record-v1.0.0": "embedded_schemas/cache/v1.0.0/validator-record.yaml",
}

func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(Schemas, "embedded_schemas"); err == nil {
		return sub
	}
	return Schemas
}

// GetSchema returns the embedded schema bytes by path (e.g., "embedded_schemas/config/v1.0.0/filter-set.yaml").
func GetSchema(relPath string) ([]byte, bool) {
	data, err := Schemas.ReadFile(relPath)
	return data, err == nil
}

// GetSchemaNames returns the embedded schemas, sorted by name.
func GetSchemaNames() []SchemaInfo {
	var infos []SchemaInfo
	for name, path := range knownSchemas {
		if _, ok := GetSchema(path); ok {
			infos = append(infos, SchemaInfo{Name: name, Path: path})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
