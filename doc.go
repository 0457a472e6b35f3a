// Package lspeasy is a small front-end for writing Language Server Protocol
// servers. It runs the session lifecycle (handshake, running, shutdown,
// termination), dispatches inbound messages one at a time in arrival order,
// and hands request callbacks single-use tokens that send exactly one
// correctly shaped response.
//
// An application implements the Handler slots it cares about, usually by
// embedding NopHandler:
//
//	type server struct{ lspeasy.NopHandler }
//
//	func (server) Completion(ctx *lspeasy.Context, req *lspeasy.CompletionRequest) error {
//		return req.Respond([]protocol.CompletionItem{{Label: "hello"}})
//	}
//
//	s := lspeasy.NewServer(caps, server{})
//	err := lspeasy.Serve(context.Background(), s, lspeasy.FromArgs())
//
// See the examples/ directory for complete servers.
package lspeasy
