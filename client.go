package lspeasy

import (
	"github.com/gossip-lsp/lspeasy/jsonrpc"
	"github.com/gossip-lsp/lspeasy/protocol"
)

// Log sends a window/logMessage notification. Like every outbound helper it
// is safe to call from any goroutine, inside or outside a callback.
func (s *Server) Log(message string, typ protocol.MessageType) error {
	return s.notify(protocol.MethodLogMessage, protocol.LogMessageParams{Type: typ, Message: message})
}

// ShowMessage sends a window/showMessage notification.
func (s *Server) ShowMessage(message string, typ protocol.MessageType) error {
	return s.notify(protocol.MethodShowMessage, protocol.ShowMessageParams{Type: typ, Message: message})
}

// SendDiagnostics pushes diagnostics for uri with
// textDocument/publishDiagnostics, independent of any pull request. Sending
// an empty slice clears the client's diagnostics for the document. The
// version of the open document is attached when it is known.
func (s *Server) SendDiagnostics(uri protocol.DocumentURI, diags []protocol.Diagnostic) error {
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	params := protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: diags}
	if doc := s.docs.Get(uri); doc != nil {
		v := doc.Version()
		params.Version = &v
	}
	return s.notify(protocol.MethodPublishDiagnostics, params)
}

func (s *Server) notify(method string, params interface{}) error {
	n, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}
	return s.send(n)
}

// clientLog is Log for the dispatcher's own reports; failures only reach
// the process log.
func (s *Server) clientLog(typ protocol.MessageType, message string) {
	if err := s.Log(message, typ); err != nil {
		s.logger.Warn("sending log message", "error", err)
	}
}
