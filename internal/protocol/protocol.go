// Package protocol defines the messages exchanged with the state coordinator.
package protocol

import "strings"

// RequestType names a request kind.
type RequestType string

const (
	RequestInitialize    RequestType = "initialize"
	RequestSetInstance   RequestType = "set_instance"
	RequestAddAlias      RequestType = "add_alias"
	RequestRemoveAlias   RequestType = "remove_alias"
	RequestSetTargetPath RequestType = "set_target_path"
	RequestReadRaw       RequestType = "read_raw"
	RequestPreview       RequestType = "preview"
	RequestCommit        RequestType = "commit"
	RequestCheckAccess   RequestType = "check_access"
	RequestSaveSettings  RequestType = "save_settings"
	RequestListBackups   RequestType = "list_backups"
	RequestRestoreBackup RequestType = "restore_backup"
	RequestShutdown      RequestType = "shutdown"
)

// ErrorCode defines standard error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidAlias   ErrorCode = "INVALID_ALIAS"
	ErrCodeDiscovery      ErrorCode = "DISCOVERY_ERROR"
	ErrCodeRead           ErrorCode = "READ_ERROR"
	ErrCodeWrite          ErrorCode = "WRITE_ERROR"
	ErrCodeState          ErrorCode = "STATE_ERROR"
	ErrCodeConfig         ErrorCode = "CONFIG_ERROR"
	ErrCodeElevation      ErrorCode = "ELEVATION_ERROR"
)

// Request is one of the request types declared in this package.
type Request interface {
	Type() RequestType
	isRequest()
}

// Initialize asks for the current snapshot and the discoverable instances.
type Initialize struct{}

// SetInstance selects the instance to query. An empty name selects the
// default instance.
type SetInstance struct {
	Name string `json:"name"`
}

// AddAlias adds an alias. Adding a present alias is a no-op.
type AddAlias struct {
	Name string `json:"name"`
}

// RemoveAlias removes an alias. Removing an absent alias is a no-op.
type RemoveAlias struct {
	Name string `json:"name"`
}

// SetTargetPath changes the hosts file path.
type SetTargetPath struct {
	Path string `json:"path"`
}

// ReadRaw asks for the current content of the hosts file.
type ReadRaw struct{}

// Preview asks for the content a commit would write.
type Preview struct{}

// Commit discovers the address and writes the hosts file.
type Commit struct{}

// CheckAccess asks for the access flags of the hosts file.
type CheckAccess struct{}

// SaveSettings persists the current configuration.
type SaveSettings struct{}

// ListBackups asks for the available hosts file backups.
type ListBackups struct{}

// RestoreBackup replaces the hosts file with the named backup.
type RestoreBackup struct {
	Name string `json:"name"`
}

// Shutdown stops the coordinator.
type Shutdown struct{}

func (Initialize) Type() RequestType    { return RequestInitialize }
func (SetInstance) Type() RequestType   { return RequestSetInstance }
func (AddAlias) Type() RequestType      { return RequestAddAlias }
func (RemoveAlias) Type() RequestType   { return RequestRemoveAlias }
func (SetTargetPath) Type() RequestType { return RequestSetTargetPath }
func (ReadRaw) Type() RequestType       { return RequestReadRaw }
func (Preview) Type() RequestType       { return RequestPreview }
func (Commit) Type() RequestType        { return RequestCommit }
func (CheckAccess) Type() RequestType   { return RequestCheckAccess }
func (SaveSettings) Type() RequestType  { return RequestSaveSettings }
func (ListBackups) Type() RequestType   { return RequestListBackups }
func (RestoreBackup) Type() RequestType { return RequestRestoreBackup }
func (Shutdown) Type() RequestType      { return RequestShutdown }

func (Initialize) isRequest()    {}
func (SetInstance) isRequest()   {}
func (AddAlias) isRequest()      {}
func (RemoveAlias) isRequest()   {}
func (SetTargetPath) isRequest() {}
func (ReadRaw) isRequest()       {}
func (Preview) isRequest()       {}
func (Commit) isRequest()        {}
func (CheckAccess) isRequest()   {}
func (SaveSettings) isRequest()  {}
func (ListBackups) isRequest()   {}
func (RestoreBackup) isRequest() {}
func (Shutdown) isRequest()      {}

// Snapshot is a copy of the coordinator's configuration.
type Snapshot struct {
	HostsPath   string   `json:"hosts_path"`
	Aliases     []string `json:"aliases"`
	Distro      string   `json:"distro,omitempty"`
	LastAddress string   `json:"last_address,omitempty"`
}

// AccessInfo describes what the process may do with the hosts file.
type AccessInfo struct {
	Path     string `json:"path"`
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
}

// BackupInfo represents a backup file.
type BackupInfo struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	Size      int64  `json:"size"`
}

// Response answers exactly one request.
type Response struct {
	Status   string       `json:"status"`
	Request  RequestType  `json:"request"`
	Message  string       `json:"message,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
	Lines    []string     `json:"lines,omitempty"`
	Distros  []string     `json:"distros,omitempty"`
	Access   *AccessInfo  `json:"access,omitempty"`
	Backups  []BackupInfo `json:"backups,omitempty"`
	// Elevated is set when a commit was handed to the writer helper.
	Elevated bool `json:"elevated,omitempty"`
}

// NewOKResponse creates a success response for reqType.
func NewOKResponse(reqType RequestType) *Response {
	return &Response{Status: "ok", Request: reqType}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(reqType RequestType, code ErrorCode, message string) *Response {
	return &Response{
		Status:  "error",
		Request: reqType,
		Code:    code,
		Message: message,
	}
}

// IsOK returns true if the response indicates success.
func (r *Response) IsOK() bool {
	return r.Status == "ok"
}

// Err returns the response as an error, or nil for a success response.
func (r *Response) Err() error {
	if r.IsOK() {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message}
}

// Text returns the lines joined with newlines.
func (r *Response) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Error is an error response seen from the client side.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Is matches errors with the same code, so callers can test
// errors.Is(err, &protocol.Error{Code: protocol.ErrCodeWrite}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}
