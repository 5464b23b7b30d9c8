package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	validate *validator.Validate
	// patternM 存储正则表达式模式映射
	// key: 验证规则名称
	// value: 正则表达式字符串
	patternM = map[string]string{
		// 以太坊地址正则: 0x开头,后接40位16进制字符
		"address": `^0x[a-fA-F0-9]{40}$`,
	}
)

// regexpValidator 通用正则验证器
// 根据 tag 中指定的模式名称 (如 "address") 查找正则并匹配
var regexpValidator validator.Func = func(fl validator.FieldLevel) bool {
	key, _ := fl.Field().Interface().(string)
	pattern, ok := patternM[fl.GetTag()]
	if ok {
		match, _ := regexp.MatchString(pattern, key)
		return match
	}
	return false
}

// init 初始化验证器并注册自定义规则
func init() {
	validate = validator.New()
	for name := range patternM {
		_ = validate.RegisterValidation(name, regexpValidator)
	}
}

// Verify 校验结构体上的 validate 标签
func Verify(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.Wrap(err, "failed on verify params")
	}
	return nil
}
