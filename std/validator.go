package std

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
)

const (
	// LocaleEnglish 英文语言码
	LocaleEnglish = "en"
	// LocaleChinese 中文语言码
	LocaleChinese = "zh"
)

// FieldError 字段级错误信息
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 封装后的校验错误
type ValidationError struct {
	Fields []FieldError
	err    error
}

func (my *ValidationError) Error() string {
	if len(my.Fields) == 0 {
		if my.err != nil {
			return my.err.Error()
		}
		return "参数校验失败"
	}
	msg := make([]string, 0, len(my.Fields))
	for _, f := range my.Fields {
		msg = append(msg, f.Message)
	}
	return strings.Join(msg, "; ")
}

func (my *ValidationError) Unwrap() error { return my.err }

// Validator 公共校验器，封装了 go-playground/validator 并支持多语言翻译
type Validator struct {
	validate  *validator.Validate
	universal *ut.UniversalTranslator
	locale    string
	mutex     sync.RWMutex
}

// NewValidator 创建校验器实例，默认使用英文提示
func NewValidator() (*Validator, error) {
	enLocale, zhLocale := en.New(), zh.New()
	v := &Validator{
		validate:  validator.New(),
		universal: ut.New(enLocale, enLocale, zhLocale),
		locale:    LocaleEnglish,
	}

	enTrans, _ := v.universal.GetTranslator(LocaleEnglish)
	if err := enTranslations.RegisterDefaultTranslations(v.validate, enTrans); err != nil {
		return nil, err
	}
	zhTrans, _ := v.universal.GetTranslator(LocaleChinese)
	if err := zhTranslations.RegisterDefaultTranslations(v.validate, zhTrans); err != nil {
		return nil, err
	}

	// 错误信息里使用配置键而非Go字段名
	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := strings.TrimSpace(field.Tag.Get("label")); label != "" {
			return label
		}
		return field.Name
	})
	return v, nil
}

// SetLocale 设置提示语言
func (my *Validator) SetLocale(locale string) {
	if _, found := my.universal.GetTranslator(locale); !found {
		return
	}
	my.mutex.Lock()
	defer my.mutex.Unlock()
	my.locale = locale
}

// Check 执行结构体校验，失败时返回 *ValidationError
func (my *Validator) Check(payload any) error {
	err := my.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &ValidationError{err: err}
	}

	my.mutex.RLock()
	trans, _ := my.universal.GetTranslator(my.locale)
	my.mutex.RUnlock()

	fields := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fe.Translate(trans)})
	}
	return &ValidationError{Fields: fields, err: err}
}
