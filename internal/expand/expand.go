// Package expand turns call templates ("METHOD tok1 tok2 ...", at most one
// token a lo..hi range) into the concrete calls a workload will issue.
// Malformed input is always returned as an error rather than terminating
// the process.
package expand

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"flood/internal/model"
)

// ParseTemplate builds a CallTemplate from a method name and a
// whitespace-separated "tok1 tok2 ..." parameter string.
func ParseTemplate(method string, rawParams string) (model.CallTemplate, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return model.CallTemplate{}, fmt.Errorf("expand: empty method")
	}
	var tokens []string
	if strings.TrimSpace(rawParams) != "" {
		tokens = strings.Fields(rawParams)
	}
	return model.CallTemplate{Method: method, Params: tokens}, nil
}

// rangeExpr is a parsed lo..hi integer range, inclusive on both ends.
type rangeExpr struct {
	lo, hi int64
}

func parseIntToken(s string) (int64, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// formatLike re-renders an integer in the same base as the template token it
// replaces (hex tokens stay hex, decimal stay decimal). Hex is written with a
// lowercase "0x" prefix and no zero padding.
func formatLike(template string, v int64) string {
	if strings.HasPrefix(template, "0x") || strings.HasPrefix(template, "0X") {
		return fmt.Sprintf("0x%x", v)
	}
	return strconv.FormatInt(v, 10)
}

func tryParseRange(tok string) (rangeExpr, bool, error) {
	idx := strings.Index(tok, "..")
	if idx < 0 {
		return rangeExpr{}, false, nil
	}
	loStr, hiStr := tok[:idx], tok[idx+2:]
	lo, okLo := parseIntToken(loStr)
	hi, okHi := parseIntToken(hiStr)
	if !okLo || !okHi {
		return rangeExpr{}, false, nil
	}
	if hi < lo {
		return rangeExpr{}, true, fmt.Errorf("expand: malformed range %q: hi < lo", tok)
	}
	return rangeExpr{lo: lo, hi: hi}, true, nil
}

// tokenToJSON parses a single non-range token into a JSON-RPC param value.
// JSON-parseable tokens (bool, null, number, quoted string) are kept as-is;
// anything else (e.g. "latest") is treated as a bare string and quote-wrapped,
// so block-tag-like tokens survive as valid JSON string params.
func tokenToJSON(tok string) json.RawMessage {
	var v interface{}
	if err := json.Unmarshal([]byte(tok), &v); err == nil {
		return json.RawMessage(tok)
	}
	b, _ := json.Marshal(tok)
	return json.RawMessage(b)
}

// Expand turns one CallTemplate into one or more ConcreteCalls, expanding at
// most one range token in ascending order. More than one range in a single
// template is a load-time error, as is a malformed (hi < lo) range.
func Expand(t model.CallTemplate) ([]model.ConcreteCall, error) {
	if strings.TrimSpace(t.Method) == "" {
		return nil, fmt.Errorf("expand: empty method")
	}

	rangeTokenIdx := -1
	var r rangeExpr
	for i, tok := range t.Params {
		rng, isRange, err := tryParseRange(tok)
		if err != nil {
			return nil, err
		}
		if !isRange {
			continue
		}
		if rangeTokenIdx != -1 {
			return nil, fmt.Errorf("expand: method %q has more than one range token", t.Method)
		}
		rangeTokenIdx = i
		r = rng
	}

	if rangeTokenIdx == -1 {
		params := make([]json.RawMessage, len(t.Params))
		for i, tok := range t.Params {
			params[i] = tokenToJSON(tok)
		}
		return []model.ConcreteCall{{Method: t.Method, Params: params}}, nil
	}

	rangeTok := t.Params[rangeTokenIdx]
	n := int(r.hi - r.lo + 1)
	calls := make([]model.ConcreteCall, 0, n)
	for v := r.lo; v <= r.hi; v++ {
		params := make([]json.RawMessage, len(t.Params))
		for i, tok := range t.Params {
			if i == rangeTokenIdx {
				params[i] = tokenToJSON(formatLike(rangeTok, v))
			} else {
				params[i] = tokenToJSON(tok)
			}
		}
		calls = append(calls, model.ConcreteCall{Method: t.Method, Params: params})
	}
	return calls, nil
}

// ExpandAll expands a list of templates in order, preserving the
// cross-template ordering and each template's internal ascending expansion.
func ExpandAll(templates []model.CallTemplate) ([]model.ConcreteCall, error) {
	var out []model.ConcreteCall
	for _, t := range templates {
		calls, err := Expand(t)
		if err != nil {
			return nil, err
		}
		out = append(out, calls...)
	}
	return out, nil
}
