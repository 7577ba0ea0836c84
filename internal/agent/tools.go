package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Keyring-Network/keyring-gavryn/relay/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/relay/internal/scrape"
)

const TechnologyToolName = "get_website_technology"

// HandlerFunc executes a tool locally. Its return value is serialized as
// the tool's result.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

type Tool struct {
	Spec    llm.Tool
	Handler HandlerFunc
}

type registeredTool struct {
	Tool
	schema *gojsonschema.Schema
}

// Toolset is the fixed set of tools advertised to the model, in
// registration order.
type Toolset struct {
	tools  []registeredTool
	byName map[string]int
}

func NewToolset(tools ...Tool) (*Toolset, error) {
	set := &Toolset{byName: map[string]int{}}
	for _, tool := range tools {
		name := tool.Spec.Function.Name
		if name == "" {
			return nil, fmt.Errorf("tool has no name")
		}
		if _, exists := set.byName[name]; exists {
			return nil, fmt.Errorf("tool %s registered twice", name)
		}
		if tool.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.Spec.Function.Parameters))
		if err != nil {
			return nil, fmt.Errorf("compile parameters schema for %s: %w", name, err)
		}
		set.byName[name] = len(set.tools)
		set.tools = append(set.tools, registeredTool{Tool: tool, schema: schema})
	}
	return set, nil
}

func (s *Toolset) Specs() []llm.Tool {
	specs := make([]llm.Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		specs = append(specs, tool.Spec)
	}
	return specs
}

func (s *Toolset) lookup(name string) (registeredTool, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return registeredTool{}, false
	}
	return s.tools[idx], true
}

// ArgumentsError reports tool-call arguments that do not satisfy the
// tool's declared parameters.
type ArgumentsError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

func (t registeredTool) validate(args map[string]any) error {
	result, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments for %s: %w", t.Spec.Function.Name, err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return &ArgumentsError{Tool: t.Spec.Function.Name, Problems: problems}
}

type TechnologyLookup interface {
	Technology(ctx context.Context, url string) scrape.Result
}

// TechnologyTool exposes the technology lookup adapter to the model. A failed
// lookup still yields records: the single error marker.
func TechnologyTool(lookup TechnologyLookup) Tool {
	return Tool{
		Spec: llm.Tool{
			Type: "function",
			Function: llm.FunctionSpec{
				Name:        TechnologyToolName,
				Description: "Get the technology stack for a given website URL.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"url": map[string]any{
							"type":        "string",
							"description": "The URL of the website to analyze, e.g., https://www.example.com",
						},
					},
					"required": []string{"url"},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			url, _ := args["url"].(string)
			return lookup.Technology(ctx, url).Records(), nil
		},
	}
}
