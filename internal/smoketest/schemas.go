package smoketest

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// timestampPattern matches an ISO-8601 local date-time without zone offset.
const timestampPattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?$`

// routeSchemas maps each route to the JSON schema its body must satisfy.
var routeSchemas = map[string]*gojsonschema.Schema{
	RouteRoot:      mustSchema("message", "timestamp", "service", "version"),
	RouteHealth:    mustSchema("status", "timestamp", "service"),
	RouteHelloName: mustSchema("message", "timestamp", "service"),
	RouteInfo:      mustSchema("service", "version", "description", "timestamp", "java.version", "os.name"),
}

// mustSchema builds a closed object schema of string properties.
func mustSchema(keys ...string) *gojsonschema.Schema {
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		prop := map[string]any{"type": "string"}
		if k == "timestamp" {
			prop["pattern"] = timestampPattern
		}
		props[k] = prop
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             keys,
		"additionalProperties": false,
	}))
	if err != nil {
		panic(fmt.Sprintf("invalid schema: %v", err))
	}
	return schema
}

// validateSchema checks body against the route's schema.
func validateSchema(route string, body []byte) error {
	schema, ok := routeSchemas[route]
	if !ok {
		return fmt.Errorf("no schema for route %q", route)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
