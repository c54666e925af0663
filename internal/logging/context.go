package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering (e.g. channel_create_failed).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator-facing next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldSessionID identifies one connect/request/response/disconnect cycle.
	FieldSessionID = "session_id"
	// FieldState is the channel server state at the time of the record.
	FieldState = "state"
	// FieldSourceDir is the client-supplied source directory.
	FieldSourceDir = "source_dir"
	// FieldDestDir is the fixed destination directory.
	FieldDestDir = "dest_dir"
	// FieldFilesCopied is the number of files a transfer copied.
	FieldFilesCopied = "files_copied"
	// FieldChannel is the resolved channel endpoint (pipe path or socket path).
	FieldChannel = "channel"
)
