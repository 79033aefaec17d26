// Package workloadfile loads a workload definition from a JSON file
// (`flood run --input PATH`) instead of positional CLI arguments, feeding
// the same call templates through internal/expand. The file is validated
// against a JSON Schema via github.com/xeipuuv/gojsonschema before being
// parsed, so malformed user-authored files fail fast instead of partway
// through a run.
package workloadfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"flood/internal/expand"
	"flood/internal/model"
)

// schemaDoc describes the {"calls": [...], "policy": "..."} file shape.
const schemaDoc = `{
  "type": "object",
  "required": ["calls"],
  "properties": {
    "calls": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["method"],
        "properties": {
          "method": {"type": "string", "minLength": 1},
          "params": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "policy": {"type": "string", "enum": ["serial", "shuffle", "choose"]}
  }
}`

// fileCall is one entry of the file's "calls" array: a method name plus its
// ordered parameter tokens, each token the same kind of string
// internal/expand parses for a positional CLI call (a JSON literal, a bare
// string, or one `lo..hi` range).
type fileCall struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type fileDoc struct {
	Calls  []fileCall `json:"calls"`
	Policy string     `json:"policy"`
}

// Load reads path, validates it against the workload-file JSON Schema, and
// expands its call templates into concrete calls plus the requested policy.
// An empty/absent "policy" defaults to model.PolicySerial.
func Load(path string) ([]model.ConcreteCall, model.Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("workloadfile: read %s: %w", path, err)
	}

	schemaLoader := gojsonschema.NewStringLoader(schemaDoc)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, "", fmt.Errorf("workloadfile: validate %s: %w", path, err)
	}
	if !result.Valid() {
		return nil, "", fmt.Errorf("workloadfile: %s fails schema: %s", path, result.Errors()[0])
	}

	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("workloadfile: parse %s: %w", path, err)
	}

	policy := model.PolicySerial
	if doc.Policy != "" {
		policy = model.Policy(doc.Policy)
	}

	templates := make([]model.CallTemplate, 0, len(doc.Calls))
	for _, fc := range doc.Calls {
		method := strings.TrimSpace(fc.Method)
		if method == "" {
			return nil, "", fmt.Errorf("workloadfile: %s: empty method", path)
		}
		templates = append(templates, model.CallTemplate{Method: method, Params: fc.Params})
	}

	calls, err := expand.ExpandAll(templates)
	if err != nil {
		return nil, "", fmt.Errorf("workloadfile: %s: %w", path, err)
	}
	return calls, policy, nil
}
