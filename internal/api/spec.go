package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var specYAML []byte

// SpecYAML returns the embedded OpenAPI document.
func SpecYAML() []byte {
	return specYAML
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
}

// planRoute resolves the POST /plan operation. The route is fixed, so
// there is no need for a general router.
func planRoute(doc *openapi3.T) (*routers.Route, error) {
	item := doc.Paths.Find(PlanPath)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("OpenAPI spec has no POST %s operation", PlanPath)
	}
	return &routers.Route{
		Spec:      doc,
		Path:      PlanPath,
		PathItem:  item,
		Method:    http.MethodPost,
		Operation: item.Post,
	}, nil
}
