package service

import "errors"

// ErrNotFound 资源不存在或不属于请求店铺
// 两种情况不做区分，避免跨店铺探测存在性
var ErrNotFound = errors.New("记录不存在")
