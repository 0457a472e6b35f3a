package protocol

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestServerCapabilitiesExtra(t *testing.T) {
	caps := ServerCapabilities{
		CompletionProvider: &CompletionOptions{},
		Extra: map[string]json.RawMessage{
			"hoverProvider":      json.RawMessage(`true`),
			"completionProvider": json.RawMessage(`"shadowed"`),
		},
	}
	data, err := json.Marshal(caps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]interface{}{
		"hoverProvider":      true,
		"completionProvider": map[string]interface{}{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("capabilities mismatch (-want +got):\n%s", diff)
	}
}

func TestServerCapabilitiesEmpty(t *testing.T) {
	data, err := json.Marshal(ServerCapabilities{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("got %s, want {}", data)
	}
}

func TestMessageTypeString(t *testing.T) {
	tests := map[MessageType]string{
		Error:          "error",
		Warning:        "warning",
		Info:           "info",
		Log:            "log",
		MessageType(9): "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("MessageType(%d).String() = %q, want %q", int(typ), got, want)
		}
	}
}

func TestDocumentURIPath(t *testing.T) {
	tests := []struct {
		uri  DocumentURI
		want string
	}{
		{"file:///tmp/hello.txt", "/tmp/hello.txt"},
		{"file:///tmp/with%20space.go", "/tmp/with space.go"},
		{"untitled:Untitled-1", ""},
	}
	for _, tt := range tests {
		if got := tt.uri.Path(); got != tt.want {
			t.Errorf("%s.Path() = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestURIFromPath(t *testing.T) {
	uri := URIFromPath("/tmp/with space.go")
	if uri != "file:///tmp/with%20space.go" {
		t.Errorf("URIFromPath = %q", uri)
	}
	if got := uri.Path(); got != "/tmp/with space.go" {
		t.Errorf("round trip = %q", got)
	}
}
