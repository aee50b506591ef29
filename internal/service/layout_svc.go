package service

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

// LayoutService 触控布局管理
// 元素解析/修正在这里完成，单默认不变量由仓储层事务保证
type LayoutService struct {
	layoutRepo repository.InputLayoutRepository
}

// NewLayoutService 创建布局服务
func NewLayoutService(layoutRepo repository.InputLayoutRepository) *LayoutService {
	return &LayoutService{layoutRepo: layoutRepo}
}

// List 店铺的全部布局，新建在前
func (s *LayoutService) List(ctx context.Context, shop string) ([]dto.LayoutResp, error) {
	layouts, err := s.layoutRepo.List(ctx, shop)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.LayoutResp, 0, len(layouts))
	for i := range layouts {
		view, err := layoutView(&layouts[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *view)
	}
	return resp, nil
}

// Get 单个布局
func (s *LayoutService) Get(ctx context.Context, shop, id string) (*dto.LayoutResp, error) {
	layout, err := s.layoutRepo.GetByID(ctx, shop, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return layoutView(layout)
}

// Create 新建布局
func (s *LayoutService) Create(ctx context.Context, shop string, req dto.LayoutSaveReq) (*dto.LayoutResp, error) {
	elements, err := parseElements(req.Elements)
	if err != nil {
		return nil, err
	}

	layout := &model.InputLayout{
		Shop:        shop,
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if err := layout.SetElements(elements); err != nil {
		return nil, err
	}

	if err := s.layoutRepo.Create(ctx, layout); err != nil {
		return nil, err
	}
	return layoutView(layout)
}

// Update 更新布局
func (s *LayoutService) Update(ctx context.Context, shop, id string, req dto.LayoutSaveReq) (*dto.LayoutResp, error) {
	elements, err := parseElements(req.Elements)
	if err != nil {
		return nil, err
	}

	layout := &model.InputLayout{
		Shop:        shop,
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	layout.ID = id
	if err := layout.SetElements(elements); err != nil {
		return nil, err
	}

	if err := s.layoutRepo.Update(ctx, layout); err != nil {
		return nil, mapNotFound(err)
	}

	// 回读以获得时间戳等落库后的字段
	saved, err := s.layoutRepo.GetByID(ctx, shop, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return layoutView(saved)
}

// SetDefault 把指定布局设为默认
func (s *LayoutService) SetDefault(ctx context.Context, shop, id string) (*dto.LayoutResp, error) {
	if err := s.layoutRepo.SetDefault(ctx, shop, id); err != nil {
		return nil, mapNotFound(err)
	}
	saved, err := s.layoutRepo.GetByID(ctx, shop, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return layoutView(saved)
}

// Delete 删除布局
// 删除默认布局后店铺处于零默认状态，合法
func (s *LayoutService) Delete(ctx context.Context, shop, id string) error {
	return mapNotFound(s.layoutRepo.Delete(ctx, shop, id))
}

// ResolveForStorefront 前台取布局
// 优先显式 layoutId（字面量 "default" 视为未指定）；id 无效时回退到
// 店铺默认布局；都没有则返回 nil 而不是错误
func (s *LayoutService) ResolveForStorefront(ctx context.Context, shop, layoutID string) (*dto.StorefrontLayout, error) {
	if layoutID != "" && layoutID != "default" {
		layout, err := s.layoutRepo.GetByID(ctx, shop, layoutID)
		if err == nil {
			return storefrontView(layout)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// 未知 id 回退到默认布局
	}

	layout, err := s.layoutRepo.GetDefault(ctx, shop)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return storefrontView(layout)
}

// ==================== 私有方法 ====================

// parseElements 解析并修正编辑器提交的元素集合
// 空输入等价于空集合；任何元素 type 非法则整体拒绝
func parseElements(raw json.RawMessage) ([]model.InputElement, error) {
	if len(raw) == 0 {
		return []model.InputElement{}, nil
	}

	var elements []model.InputElement
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, &model.ValidationError{Field: "elements", Message: "不是合法的元素集合 JSON"}
	}

	for i := range elements {
		if err := elements[i].Normalize(); err != nil {
			return nil, err
		}
	}
	return elements, nil
}

func layoutView(layout *model.InputLayout) (*dto.LayoutResp, error) {
	elements, err := layout.ElementList()
	if err != nil {
		return nil, err
	}
	return &dto.LayoutResp{
		ID:          layout.ID,
		Name:        layout.Name,
		Description: layout.Description,
		Elements:    elements,
		IsDefault:   layout.IsDefault,
		CreatedAt:   layout.CreatedAt,
		UpdatedAt:   layout.UpdatedAt,
	}, nil
}

func storefrontView(layout *model.InputLayout) (*dto.StorefrontLayout, error) {
	elements, err := layout.ElementList()
	if err != nil {
		return nil, err
	}
	return &dto.StorefrontLayout{
		ID:       layout.ID,
		Name:     layout.Name,
		Elements: elements,
	}, nil
}

// mapNotFound 把 gorm 的未找到统一映射为服务层错误
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
