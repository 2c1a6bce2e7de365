// File: services/notice.go
package services

// Notice levels, matching the alert classes used by the templates.
const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a message shown to the user on the next rendered page.
// Validation problems are reported as notices, never as errors.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func info(msg string) Notice    { return Notice{Level: NoticeInfo, Message: msg} }
func warning(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }
func failure(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }

// IsError reports whether the notice describes a rejected request.
func (n Notice) IsError() bool { return n.Level == NoticeError }
