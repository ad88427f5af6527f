package model

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a user-facing status message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func SuccessNotice(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func ErrorNotice(msg string) Notice   { return Notice{Level: NoticeError, Message: msg} }
