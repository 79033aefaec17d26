package expand

import (
	"testing"

	"flood/internal/model"
)

func TestExpandNoRange(t *testing.T) {
	calls, err := Expand(model.CallTemplate{Method: "eth_getBalance", Params: []string{"0xabc", "latest"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if string(calls[0].Params[0]) != `"0xabc"` {
		t.Errorf("params[0] = %s, want quoted hex string", calls[0].Params[0])
	}
	if string(calls[0].Params[1]) != `"latest"` {
		t.Errorf("params[1] = %s, want quoted bare string", calls[0].Params[1])
	}
}

func TestExpandRange(t *testing.T) {
	calls, err := Expand(model.CallTemplate{Method: "eth_getBlockByNumber", Params: []string{"1..5", "true"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(calls) != 5 {
		t.Fatalf("len(calls) = %d, want 5", len(calls))
	}
	for i, c := range calls {
		want := i + 1
		if got := string(c.Params[0]); got != itoa(want) {
			t.Errorf("calls[%d].Params[0] = %s, want %d", i, got, want)
		}
		if string(c.Params[1]) != "true" {
			t.Errorf("calls[%d].Params[1] = %s, want true", i, c.Params[1])
		}
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte('0' + v%10)}, b...)
		v /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func TestExpandHexRangePreservesBase(t *testing.T) {
	calls, err := Expand(model.CallTemplate{Method: "eth_call", Params: []string{"0x1..0x3"}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []string{"0x1", "0x2", "0x3"}
	if len(calls) != len(want) {
		t.Fatalf("len(calls) = %d, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if got := string(calls[i].Params[0]); got != `"`+w+`"` {
			t.Errorf("calls[%d].Params[0] = %s, want %q", i, got, w)
		}
	}
}

func TestExpandMalformedRange(t *testing.T) {
	_, err := Expand(model.CallTemplate{Method: "m", Params: []string{"5..1"}})
	if err == nil {
		t.Fatal("Expand: want error for hi < lo, got nil")
	}
}

func TestExpandMultipleRangesRejected(t *testing.T) {
	_, err := Expand(model.CallTemplate{Method: "m", Params: []string{"1..3", "1..3"}})
	if err == nil {
		t.Fatal("Expand: want error for more than one range token, got nil")
	}
}

func TestExpandEmptyMethod(t *testing.T) {
	_, err := Expand(model.CallTemplate{Method: "  ", Params: nil})
	if err == nil {
		t.Fatal("Expand: want error for empty method, got nil")
	}
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("eth_getBalance", "0xabc  latest")
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if tmpl.Method != "eth_getBalance" {
		t.Errorf("Method = %q, want eth_getBalance", tmpl.Method)
	}
	if len(tmpl.Params) != 2 {
		t.Fatalf("len(Params) = %d, want 2", len(tmpl.Params))
	}
}

func TestParseTemplateEmptyMethod(t *testing.T) {
	if _, err := ParseTemplate("  ", ""); err == nil {
		t.Fatal("ParseTemplate: want error for empty method, got nil")
	}
}

func TestExpandAllPreservesOrder(t *testing.T) {
	templates := []model.CallTemplate{
		{Method: "a", Params: []string{"1..2"}},
		{Method: "b"},
	}
	calls, err := ExpandAll(templates)
	if err != nil {
		t.Fatalf("ExpandAll: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("len(calls) = %d, want 3", len(calls))
	}
	if calls[0].Method != "a" || calls[1].Method != "a" || calls[2].Method != "b" {
		t.Errorf("ExpandAll did not preserve cross-template order: %+v", calls)
	}
}
