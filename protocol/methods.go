package protocol

// LSP method constants. Method names are literal protocol identifiers and are
// matched exactly.
const (
	// Lifecycle
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"
	MethodCancel      = "$/cancelRequest"

	// Text document sync (client -> server)
	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidSave   = "textDocument/didSave"
	MethodDidClose  = "textDocument/didClose"

	// Language features (client -> server)
	MethodCompletion = "textDocument/completion"
	MethodDiagnostic = "textDocument/diagnostic"

	// Notifications (server -> client)
	MethodPublishDiagnostics = "textDocument/publishDiagnostics"
	MethodLogMessage         = "window/logMessage"
	MethodShowMessage        = "window/showMessage"
)
