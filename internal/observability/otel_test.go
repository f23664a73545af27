package observability

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"weddingbudget/internal/config"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "api-key=abc", want: map[string]string{"api-key": "abc"}},
		{name: "multiple_with_spaces", raw: " a = 1 , b=2", want: map[string]string{"a": "1", "b": "2"}},
		{name: "skips_malformed", raw: "novalue,=x,k=,ok=yes", want: map[string]string{"ok": "yes"}},
		{name: "value_keeps_equals", raw: "auth=Basic a=b", want: map[string]string{"auth": "Basic a=b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseHeaders(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), zap.NewNop().Sugar(), &config.Config{})
	if shutdown == nil {
		t.Fatal("expected a shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}
