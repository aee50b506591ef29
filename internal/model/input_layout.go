package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ==================== 常量定义 ====================

// 元素类型
const (
	ElementTypeJoystick = "joystick"
	ElementTypeButton   = "button"
)

// 摇杆模式
const (
	JoystickModeWASD   = "wasd"
	JoystickModeArrows = "arrows"
	JoystickModeCustom = "custom"
)

// 模式对应的固定按键绑定
// wasd / arrows 模式下绑定由模式推导，用户提交的值会被覆盖
var (
	wasdBindings  = []string{"w", "a", "s", "d"}
	arrowBindings = []string{"ArrowUp", "ArrowLeft", "ArrowDown", "ArrowRight"}
)

// ==================== 校验错误 ====================

// ValidationError 元素校验错误，Field 指明出错字段
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 校验失败: %s", e.Field, e.Message)
}

// ==================== InputLayout ====================

// InputLayout 触控布局
// 一个店铺可以有多个布局，但 is_default = true 的至多一个，
// 该不变量由 repository 层事务加 DefaultUniqueIndex 部分唯一索引共同保证
type InputLayout struct {
	BaseModel

	Shop        string `gorm:"size:255;index;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	// 元素集合序列化存储，元素没有独立的表
	Elements datatypes.JSON `gorm:"type:jsonb"`

	IsDefault bool `gorm:"default:false;index"`
}

func (InputLayout) TableName() string {
	return "input_layouts"
}

// DefaultUniqueIndex 部分唯一索引名，每店铺至多一行 is_default = true
const DefaultUniqueIndex = "uniq_input_layouts_default"

// DefaultUniqueIndexSQL 建索引 DDL
// AutoMigrate 表达不了带 WHERE 的部分唯一索引，由初始化阶段单独执行
const DefaultUniqueIndexSQL = "CREATE UNIQUE INDEX IF NOT EXISTS " + DefaultUniqueIndex +
	" ON input_layouts (shop) WHERE is_default"

// ElementList 反序列化元素集合
func (l *InputLayout) ElementList() ([]InputElement, error) {
	if len(l.Elements) == 0 {
		return []InputElement{}, nil
	}
	var elements []InputElement
	if err := json.Unmarshal(l.Elements, &elements); err != nil {
		return nil, fmt.Errorf("解析元素集合失败: %w", err)
	}
	return elements, nil
}

// SetElements 序列化元素集合
func (l *InputLayout) SetElements(elements []InputElement) error {
	if elements == nil {
		elements = []InputElement{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("序列化元素集合失败: %w", err)
	}
	l.Elements = datatypes.JSON(data)
	return nil
}

// ==================== InputElement ====================

// InputElement 布局中的一个触控元素（摇杆或按钮）
// 只存在于所属布局的元素集合里，没有独立身份
// json 字段名与前台约定保持 camelCase
type InputElement struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// 位置与尺寸，视口百分比 [0,100]
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	KeyBindings []string `json:"keyBindings"`

	Label     string `json:"label,omitempty"`
	ShowLabel bool   `json:"showLabel"`
	Icon      string `json:"icon,omitempty"`

	DefaultColor string  `json:"defaultColor"`
	HoverColor   string  `json:"hoverColor"`
	PressColor   string  `json:"pressColor"`
	Opacity      float64 `json:"opacity"`
	BorderRadius float64 `json:"borderRadius"`

	// 仅摇杆有效
	JoystickMode string `json:"joystickMode,omitempty"`
}

// UnmarshalJSON 数值字段宽松解析
// 编辑器可能提交字符串形式的数字或空值，这里按 parseFloat 语义兜底，
// 解析不了的值交给 Normalize 用安全默认处理
func (e *InputElement) UnmarshalJSON(data []byte) error {
	type plain InputElement
	aux := struct {
		*plain
		X            json.RawMessage `json:"x"`
		Y            json.RawMessage `json:"y"`
		Width        json.RawMessage `json:"width"`
		Height       json.RawMessage `json:"height"`
		Opacity      json.RawMessage `json:"opacity"`
		BorderRadius json.RawMessage `json:"borderRadius"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.X = lenientNumber(aux.X, 0)
	e.Y = lenientNumber(aux.Y, 0)
	e.Width = lenientNumber(aux.Width, 0)
	e.Height = lenientNumber(aux.Height, 0)
	// NaN 作为"非数字"哨兵，Normalize 替换为 0.5
	e.Opacity = lenientNumber(aux.Opacity, math.NaN())
	e.BorderRadius = lenientNumber(aux.BorderRadius, 0)
	return nil
}

func lenientNumber(raw json.RawMessage, fallback float64) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return fallback
}

// Normalize 元素入库前的统一校验与修正
// 策略是 clamp 而非拒绝，保持编辑器的宽容度：
//   - x/y/width/height 截断到 [0,100]
//   - opacity 截断到 [0,1]，非数字回退 0.5
//   - wasd/arrows 摇杆的按键绑定由模式推导，覆盖外部提交值
//
// 只有 type 非法才返回 ValidationError
func (e *InputElement) Normalize() error {
	switch e.Type {
	case ElementTypeJoystick, ElementTypeButton:
	default:
		return &ValidationError{Field: "type", Message: "必须是 joystick 或 button"}
	}

	if e.ID == "" {
		e.ID = "element-" + uuid.NewString()
	}

	e.X = clampPercent(e.X)
	e.Y = clampPercent(e.Y)
	e.Width = clampPercent(e.Width)
	e.Height = clampPercent(e.Height)
	e.BorderRadius = clampPercent(e.BorderRadius)

	if math.IsNaN(e.Opacity) || math.IsInf(e.Opacity, 0) {
		e.Opacity = 0.5
	}
	e.Opacity = clampRange(e.Opacity, 0, 1)

	if e.Type == ElementTypeJoystick {
		switch e.JoystickMode {
		case JoystickModeCustom:
			// custom 模式绑定可自由编辑，保持原样
		case JoystickModeArrows:
			e.KeyBindings = append([]string(nil), arrowBindings...)
		default:
			// 空或未知模式一律按 wasd 处理
			e.JoystickMode = JoystickModeWASD
			e.KeyBindings = append([]string(nil), wasdBindings...)
		}
	} else {
		e.JoystickMode = ""
	}

	if e.KeyBindings == nil {
		e.KeyBindings = []string{}
	}
	return nil
}

func clampPercent(v float64) float64 {
	return clampRange(v, 0, 100)
}

func clampRange(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ==================== 默认模板 ====================

// DefaultJoystick 编辑器新增摇杆时的默认模板
func DefaultJoystick() InputElement {
	return InputElement{
		Type:         ElementTypeJoystick,
		X:            5,
		Y:            50,
		Width:        25,
		Height:       25,
		KeyBindings:  append([]string(nil), wasdBindings...),
		ShowLabel:    false,
		DefaultColor: "#ffffff",
		HoverColor:   "#e0e0e0",
		PressColor:   "#cccccc",
		Opacity:      0.5,
		BorderRadius: 50,
		JoystickMode: JoystickModeWASD,
	}
}

// DefaultButton 编辑器新增按钮时的默认模板
func DefaultButton() InputElement {
	return InputElement{
		Type:         ElementTypeButton,
		X:            80,
		Y:            70,
		Width:        15,
		Height:       15,
		KeyBindings:  []string{"space"},
		Label:        "A",
		ShowLabel:    true,
		DefaultColor: "#ffffff",
		HoverColor:   "#e0e0e0",
		PressColor:   "#cccccc",
		Opacity:      0.5,
		BorderRadius: 50,
	}
}
