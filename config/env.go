package config

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// envBinding 一个叶子字段与其环境变量名
type envBinding struct {
	key   string
	field reflect.Value
}

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// bindEnv 将 PREFIX_SECTION_FIELD 形式的环境变量写入 cfg，空值视为未设置
func bindEnv(cfg *Config, prefix string, lookup func(string) (string, bool)) error {
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), prefix) {
		raw, ok := lookup(b.key)
		if !ok || raw == "" {
			continue
		}
		if err := parseInto(b.field, raw); err != nil {
			return fmt.Errorf("failed to set %s: %w", b.key, err)
		}
	}
	return nil
}

// EnvKeys 列出所有可用的环境变量名
func EnvKeys(prefix string) []string {
	var cfg Config
	bindings := envBindings(reflect.ValueOf(&cfg).Elem(), prefix)
	keys := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.key
	}
	return keys
}

func envBindings(v reflect.Value, prefix string) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		field := v.Field(i)
		if field.Kind() == reflect.Struct && !reflect.PointerTo(field.Type()).Implements(textUnmarshalerType) {
			out = append(out, envBindings(field, key)...)
			continue
		}
		out = append(out, envBinding{key: key, field: field})
	}
	return out
}

func parseInto(field reflect.Value, raw string) error {
	if !field.CanSet() {
		return nil
	}
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(raw))
	}
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// splitList 按逗号切分并丢弃空项
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
