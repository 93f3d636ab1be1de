package api

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaSet holds the compiled request schemas. Requests are validated
// against these before being decoded into protocol structs, so handlers only
// ever see well-formed payloads.
type SchemaSet struct {
	Push   *jsonschema.Schema
	Pull   *jsonschema.Schema
	Ingest *jsonschema.Schema
	Init   *jsonschema.Schema
}

// LoadSchemas compiles the embedded request schemas. Called once at startup;
// a failure here means the binary shipped with a broken schema.
func LoadSchemas() (*SchemaSet, error) {
	compiler := jsonschema.NewCompiler()

	for _, name := range []string{"push.json", "pull.json", "ingest.json", "init.json"} {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("failed to register schema %s: %w", name, err)
		}
	}

	set := &SchemaSet{}
	for name, dst := range map[string]**jsonschema.Schema{
		"push.json":   &set.Push,
		"pull.json":   &set.Pull,
		"ingest.json": &set.Ingest,
		"init.json":   &set.Init,
	} {
		sch, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		*dst = sch
	}
	return set, nil
}

// validateAndDecode checks raw JSON against a schema, then unmarshals it into
// dst. The schema error message is returned verbatim for the 400 response.
func validateAndDecode(sch *jsonschema.Schema, raw []byte, dst any) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return err
	}
	return decodeValidated(raw, dst)
}
