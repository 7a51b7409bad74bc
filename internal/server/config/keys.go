package config

import (
	"reflect"
	"sort"
)

// Keys lists every dotted koanf key of ServerConfig, such as
// "history.batch_size". The loader matches environment names against it.
func Keys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(ServerConfig{}), "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() == t.PkgPath() {
			collectKeys(f.Type, key, keys)
			continue
		}
		*keys = append(*keys, key)
	}
}
