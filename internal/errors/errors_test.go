package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	// 测试基本错误创建
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	// 测试带详情的错误
	err = New(ErrNoActiveSession, "玩家 42 没有进行中的会话")
	suite.NotNil(err)
	suite.Equal(ErrNoActiveSession, err.Code)
	suite.Equal("没有进行中的游戏会话", err.Message)
	suite.Equal("玩家 42 没有进行中的会话", err.Details)

	// 测试多个详情
	err = New(ErrDatabaseConnect, "连接失败", "主机: localhost", "端口: 3306")
	suite.Equal("连接失败; 主机: localhost; 端口: 3306", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrTargetOutOfRange, "目标距离 %.1f 米，投掷范围 %.1f 米", 120.5, 100.0)
	suite.NotNil(err)
	suite.Equal(ErrTargetOutOfRange, err.Code)
	suite.Equal("目标距离 120.5 米，投掷范围 100.0 米", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	// 包装标准错误
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	// 包装nil错误
	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError保留原始错误码
	appErr := New(ErrZombieNotFound, "丧尸 7 不存在")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrZombieNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrInsufficientAP)
	suite.True(Is(err, ErrInsufficientAP))
	suite.False(Is(err, ErrNoActiveSession))
	suite.False(Is(nil, ErrInsufficientAP))
	suite.False(Is(errors.New("普通错误"), ErrInsufficientAP))
}

// 测试错误码提取
func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrorCode(0), GetCode(nil))
	suite.Equal(ErrAlreadyLooted, GetCode(New(ErrAlreadyLooted)))
	suite.Equal(ErrUnknown, GetCode(errors.New("普通错误")))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	// 游戏规则校验失败统一映射为400
	suite.Equal(400, New(ErrInsufficientAP).HTTPStatus())
	suite.Equal(400, New(ErrExtractionLocked).HTTPStatus())
	// 存储不可用映射为503
	suite.Equal(503, New(ErrDatabaseConnect).HTTPStatus())
	// 认证错误映射为401
	suite.Equal(401, New(ErrTokenExpired).HTTPStatus())
	suite.Equal(404, New(ErrNotFound).HTTPStatus())
}

// 测试错误消息格式
func (suite *ErrorsTestSuite) TestErrorString() {
	err := New(ErrNoSavedSession)
	suite.Equal("[2011] 没有可恢复的游戏存档", err.Error())

	err = New(ErrItemNotFound, "medkit 数量为 0")
	suite.Equal("[2004] 物品不存在或数量不足: medkit 数量为 0", err.Error())
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestRetryable() {
	suite.True(New(ErrDatabaseConnect).Retryable())
	suite.False(New(ErrInsufficientAP).Retryable())
}

// TestErrorsTestSuite 运行测试套件
func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
