package cli

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/stoewer/go-strcase"

	"github.com/lacquerai/deriv/internal/server"
)

// SchemaOutput collects the JSON Schema of every API message, keyed by
// snake_case type name.
type SchemaOutput struct {
	Requests  map[string]*jsonschema.Schema `json:"requests"`
	Responses map[string]*jsonschema.Schema `json:"responses"`
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
		Namer: func(t reflect.Type) string {
			return strcase.SnakeCase(t.Name())
		},
		ExpandedStruct: true,
	}
}

// NewAPISchema reflects the request and response types of the HTTP API.
func NewAPISchema() SchemaOutput {
	r := newReflector()
	reflectAll := func(values ...any) map[string]*jsonschema.Schema {
		out := make(map[string]*jsonschema.Schema, len(values))
		for _, v := range values {
			out[strcase.SnakeCase(reflect.TypeOf(v).Elem().Name())] = r.Reflect(v)
		}
		return out
	}

	return SchemaOutput{
		Requests: reflectAll(
			&server.ParseRequest{},
			&server.DeriveRequest{},
			&server.EvaluateRequest{},
		),
		Responses: reflectAll(
			&server.ParseResponse{},
			&server.DeriveResponse{},
			&server.EvaluateResponse{},
			&server.FunctionsResponse{},
			&server.ErrorResponse{},
		),
	}
}

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Output JSON schema of the HTTP API",
	Long:   `Output the JSON Schema of every request and response served by drv serve.`,
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputBytes, err := json.MarshalIndent(NewAPISchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(outputBytes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
