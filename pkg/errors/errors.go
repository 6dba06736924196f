package errors

import "errors"

// ErrOptimisticLock 并发冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrWindowConflict 并发冲突：数据库排他约束拒绝了重叠的时间窗口
var ErrWindowConflict = errors.New("时间窗口与现有数据重叠")
