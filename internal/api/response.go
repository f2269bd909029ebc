package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/zombie-walk/internal/errors"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// respondError 按业务错误码映射HTTP状态
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if e, ok := err.(*errors.AppError); ok {
		appErr = e
	} else {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}

	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Code:    int(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// respondBadRequest 参数绑定失败
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    int(errors.ErrInvalidParam),
		Message: "请求参数错误",
		Details: err.Error(),
	})
}
