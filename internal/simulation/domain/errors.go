package domain

import "errors"

// ErrInvalidConfiguration 引擎唯一的错误类别：输入参数非法。
// 在任何模拟开始之前同步返回，出现即表示调用方缺陷，核心内部不做重试。
var ErrInvalidConfiguration = errors.New("invalid configuration")
