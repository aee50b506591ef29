package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gamify_toolkit/internal/model"
)

// ==================== 接口定义 ====================

// InputLayoutRepository 触控布局仓储接口
// 单默认不变量（每店铺至多一个 is_default = true）的保证分两层：
// 事务内先降级再提升，外部读不到两个默认并存的状态；
// 数据库层 DefaultUniqueIndex 部分唯一索引兜底并发提升——
// READ COMMITTED 下并发事务在本方扫描之后才设上的新默认
// 不在本方的降级集合里，靠索引冲突后重试整个事务把它降掉
type InputLayoutRepository interface {
	List(ctx context.Context, shop string) ([]model.InputLayout, error)
	GetByID(ctx context.Context, shop, id string) (*model.InputLayout, error)
	GetDefault(ctx context.Context, shop string) (*model.InputLayout, error)

	Create(ctx context.Context, layout *model.InputLayout) error
	Update(ctx context.Context, layout *model.InputLayout) error
	SetDefault(ctx context.Context, shop, id string) error
	Delete(ctx context.Context, shop, id string) error
}

// ==================== 仓储实现 ====================

type inputLayoutRepo struct {
	db *gorm.DB
}

// NewInputLayoutRepository 创建布局仓储
func NewInputLayoutRepository(db *gorm.DB) InputLayoutRepository {
	return &inputLayoutRepo{db: db}
}

func (r *inputLayoutRepo) List(ctx context.Context, shop string) ([]model.InputLayout, error) {
	var layouts []model.InputLayout
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at DESC").
		Find(&layouts).Error
	return layouts, err
}

func (r *inputLayoutRepo) GetByID(ctx context.Context, shop, id string) (*model.InputLayout, error) {
	var layout model.InputLayout
	// 跨店铺 id 同样返回 ErrRecordNotFound，不暴露存在性
	err := r.db.WithContext(ctx).
		Where("id = ? AND shop = ?", id, shop).
		First(&layout).Error
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

func (r *inputLayoutRepo) GetDefault(ctx context.Context, shop string) (*model.InputLayout, error) {
	var layout model.InputLayout
	err := r.db.WithContext(ctx).
		Where("shop = ? AND is_default = ?", shop, true).
		First(&layout).Error
	if err != nil {
		return nil, err
	}
	return &layout, nil
}

// Create 新建布局
// 新布局要求成为默认时，先在同一事务内降级该店铺的全部布局
func (r *inputLayoutRepo) Create(ctx context.Context, layout *model.InputLayout) error {
	return withDefaultConflictRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if layout.IsDefault {
				if err := demoteDefaults(tx, layout.Shop, ""); err != nil {
					return err
				}
			}
			return tx.Create(layout).Error
		})
	})
}

// Update 更新布局
// 降级时排除目标 id，避免同一写入内自我冲突
func (r *inputLayoutRepo) Update(ctx context.Context, layout *model.InputLayout) error {
	return withDefaultConflictRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if layout.IsDefault {
				if err := demoteDefaults(tx, layout.Shop, layout.ID); err != nil {
					return err
				}
			}

			res := tx.Model(&model.InputLayout{}).
				Where("id = ? AND shop = ?", layout.ID, layout.Shop).
				Updates(map[string]interface{}{
					"name":        layout.Name,
					"description": layout.Description,
					"elements":    layout.Elements,
					"is_default":  layout.IsDefault,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// 返回错误让事务回滚，降级不会单独生效
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
}

// SetDefault 把指定布局设为默认
// 目标不属于该店铺时整个事务回滚，原默认保持不变
func (r *inputLayoutRepo) SetDefault(ctx context.Context, shop, id string) error {
	return withDefaultConflictRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := demoteDefaults(tx, shop, id); err != nil {
				return err
			}

			res := tx.Model(&model.InputLayout{}).
				Where("id = ? AND shop = ?", id, shop).
				Update("is_default", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
}

// Delete 删除布局
// 删除的是当前默认时不自动扶正其他布局，店铺允许零默认状态
func (r *inputLayoutRepo) Delete(ctx context.Context, shop, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shop = ?", id, shop).
		Delete(&model.InputLayout{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// demoteDefaults 降级店铺内的默认布局，excludeID 非空时跳过该布局
func demoteDefaults(tx *gorm.DB, shop, excludeID string) error {
	q := tx.Model(&model.InputLayout{}).
		Where("shop = ? AND is_default = ?", shop, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return q.Update("is_default", false).Error
}

const defaultConflictRetries = 3

// withDefaultConflictRetry 撞上 DefaultUniqueIndex 唯一冲突时重跑整个事务，
// 新一轮的降级扫描能看到对方已提交的默认行
func withDefaultConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < defaultConflictRetries; attempt++ {
		err = fn()
		if !isDefaultConflict(err) {
			return err
		}
	}
	return err
}

// isDefaultConflict 识别部分唯一索引上的冲突
// postgres 的报错带索引名，sqlite 报索引列；shop 列上没有其他唯一约束，
// 两种形式都只可能来自这一个索引
func isDefaultConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, model.DefaultUniqueIndex) ||
		strings.Contains(msg, "UNIQUE constraint failed: input_layouts.shop")
}
