// Package validate checks output records against their JSON Schemas before
// they are written or served.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/race-results/constants"
)

// Compile builds a schema from its Go map form.
func Compile(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// JSON validates "data" against a compiled schema.
func JSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

var (
	once      sync.Once
	compiled  map[constants.DocumentKind]*jsonschema.Schema
	compileEr error
)

func schemas() (map[constants.DocumentKind]*jsonschema.Schema, error) {
	once.Do(func() {
		standings, err := Compile("standings.json", StandingsSchema())
		if err != nil {
			compileEr = err
			return
		}
		race, err := Compile("race.json", RaceResultSchema())
		if err != nil {
			compileEr = err
			return
		}
		compiled = map[constants.DocumentKind]*jsonschema.Schema{
			constants.KindStandings: standings,
			constants.KindRace:      race,
		}
	})
	return compiled, compileEr
}

// Document validates an encoded record of the given kind.
func Document(kind constants.DocumentKind, data []byte) error {
	all, err := schemas()
	if err != nil {
		return err
	}
	schema, ok := all[kind]
	if !ok {
		return fmt.Errorf("no schema for document kind %q", kind)
	}
	return JSON(schema, data)
}
