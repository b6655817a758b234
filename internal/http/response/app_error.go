package response

import "errors"

// AppError 统一错误包装，Err 非空时表示需要记录的内部原因
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// ErrorRule 错误分类规则，命中 Target 时按 Code 响应并回显错误信息
type ErrorRule struct {
	Target error
	Code   int
}

// Classify 按规则顺序分类错误，未命中时归为 500，只返回 internalMsg，原因留在 Err 中
func Classify(err error, rules []ErrorRule, internalMsg string) *AppError {
	for _, rule := range rules {
		if rule.Target != nil && errors.Is(err, rule.Target) {
			return &AppError{Code: rule.Code, Message: err.Error()}
		}
	}
	return &AppError{Code: CodeInternal, Message: internalMsg, Err: err}
}
