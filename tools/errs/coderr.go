package errs

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// 错误码：1xxx 业务校验，2xxx 资源，3xxx 鉴权，5xxx 服务端
const (
	ArgsError           = 1001 // 参数校验失败
	RecordNotFoundError = 2001
	TokenInvalidError   = 3001
	TokenExpiredError   = 3002
	ServerInternalError = 5000
	StorageError        = 5001
	UploadError         = 5002
)

var (
	ErrArgs           = NewCodeError(ArgsError, "invalid argument")
	ErrRecordNotFound = NewCodeError(RecordNotFoundError, "record not found")
	ErrTokenInvalid   = NewCodeError(TokenInvalidError, "token invalid")
	ErrTokenExpired   = NewCodeError(TokenExpiredError, "token expired")
	ErrStorage        = NewCodeError(StorageError, "storage unavailable")
	ErrUpload         = NewCodeError(UploadError, "media upload failed")
)

type CodeErrorI interface {
	ECode() int
	EMsg() string
	WithDetail(detail string) *CodeError
	error
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func (e *CodeError) ECode() int   { return e.Code }
func (e *CodeError) EMsg() string { return e.Msg }

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// WrapMsg 附加上下文并携带调用栈
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return errors.WithStack(e.WithDetail(toString(msg, kv)))
}

func (e *CodeError) Is(err error) bool {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) {
		return err == nil && e == nil
	}
	if e == nil {
		return false
	}
	return e.Code == codeErr.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func New(msg string) error { return errors.New(msg) }

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, toString(msg, kv))
}

// Code 提取错误码；非 CodeError 一律视为服务端内部错误
func Code(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return ServerInternalError
}

// HTTPStatus maps an error to the status the REST surface responds with.
func HTTPStatus(err error) int {
	switch Code(err) {
	case ArgsError:
		return http.StatusBadRequest
	case RecordNotFoundError:
		return http.StatusNotFound
	case TokenInvalidError, TokenExpiredError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回对外可见的错误文案；内部错误不透出细节
func Message(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		if codeErr.Code >= ServerInternalError {
			return codeErr.Msg
		}
		if codeErr.Detail != "" {
			return codeErr.Msg + ": " + codeErr.Detail
		}
		return codeErr.Msg
	}
	return "internal server error"
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i > 0 || msg != "" {
			sb.WriteString(", ")
		}
		key, _ := kv[i].(string)
		sb.WriteString(key)
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(anyToString(kv[i+1]))
		}
	}
	return sb.String()
}

func anyToString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return "?"
	}
}
