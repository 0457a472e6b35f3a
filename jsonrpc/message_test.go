package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeMessageClassifies(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Message
	}{
		{
			name: "request with int id",
			in:   `{"jsonrpc":"2.0","id":7,"method":"textDocument/completion","params":{"a":1}}`,
			want: &Request{JSONRPC: "2.0", ID: IntID(7), Method: "textDocument/completion", Params: RawMessage(`{"a":1}`)},
		},
		{
			name: "request with string id",
			in:   `{"jsonrpc":"2.0","id":"abc","method":"shutdown"}`,
			want: &Request{JSONRPC: "2.0", ID: StringID("abc"), Method: "shutdown"},
		},
		{
			name: "notification",
			in:   `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{}}`,
			want: &Notification{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: RawMessage(`{}`)},
		},
		{
			name: "null id is a notification",
			in:   `{"jsonrpc":"2.0","id":null,"method":"exit"}`,
			want: &Notification{JSONRPC: "2.0", Method: "exit"},
		},
		{
			name: "response",
			in:   `{"jsonrpc":"2.0","id":3,"result":[1]}`,
			want: &Response{JSONRPC: "2.0", ID: IntID(3), Result: RawMessage(`[1]`)},
		},
		{
			name: "error response",
			in:   `{"jsonrpc":"2.0","id":3,"error":{"code":-32601,"message":"nope"}}`,
			want: &Response{JSONRPC: "2.0", ID: IntID(3), Error: &Error{Code: CodeMethodNotFound, Message: "nope"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage([]byte(tt.in))
			if err != nil {
				t.Fatalf("DecodeMessage: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(ID{})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeMessageInvalidJSON(t *testing.T) {
	_, err := DecodeMessage([]byte(`{not json`))
	var rpcErr *Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != CodeParseError {
		t.Fatalf("err = %v, want parse error", err)
	}
}

func TestNewResponse(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		err    error
		want   string
	}{
		{"nil result is null", nil, nil, `{"jsonrpc":"2.0","id":1,"result":null}`},
		{"slice result", []string{"a"}, nil, `{"jsonrpc":"2.0","id":1,"result":["a"]}`},
		{"rpc error", nil, &Error{Code: CodeInvalidParams, Message: "bad"}, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"bad"}}`},
		{"plain error", nil, errors.New("boom"), `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"boom"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(NewResponse(IntID(1), tt.result, tt.err))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s, want %s", data, tt.want)
			}
		})
	}
}

func TestIDString(t *testing.T) {
	if got := IntID(42).String(); got != "42" {
		t.Errorf("IntID(42).String() = %q", got)
	}
	if got := StringID("x").String(); got != `"x"` {
		t.Errorf("StringID(x).String() = %q", got)
	}
	if got := (ID{}).String(); got != "null" {
		t.Errorf("ID{}.String() = %q", got)
	}
}
