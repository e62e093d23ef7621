package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Error 表示创建请求体未通过校验
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// 创建待办事项的请求体校验规则：
// 1. value 字段必须存在
// 2. value 必须是字符串
// 3. 长度在 1 到 50 之间
// 4. 不允许出现其他字段
const createItemSchema = `{
	"type": "object",
	"properties": {
		"value": {
			"type": "string",
			"minLength": 1,
			"maxLength": 50
		}
	},
	"required": ["value"],
	"additionalProperties": false
}`

var createSchema = jsonschema.MustCompileString("create-item.json", createItemSchema)

// CreateItem 校验创建请求体并返回其中的 value
// 校验失败返回 *Error，由错误处理中间件转换成 400 响应
func CreateItem(body io.Reader) (string, error) {
	var payload interface{}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return "", &Error{Message: fmt.Sprintf("request body is not valid JSON: %v", err)}
	}

	if err := createSchema.Validate(payload); err != nil {
		return "", &Error{Message: validationMessage(err)}
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return "", &Error{Message: "request body must be a JSON object"}
	}

	value, _ := obj["value"].(string)
	return value, nil
}

// validationMessage 从 jsonschema 的错误树中取出最具体的一条信息
func validationMessage(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}

	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		return leaf.Message
	}
	return fmt.Sprintf("%s: %s", field, leaf.Message)
}
