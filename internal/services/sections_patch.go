package services

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// patchable caches, per section type, the json name of every field a client
// may change mapped to its struct index. Embedded structs (models.Base) hold
// store-owned fields and are skipped.
var patchable sync.Map // reflect.Type -> map[string]int

func patchableFields(t reflect.Type) map[string]int {
	if cached, ok := patchable.Load(t); ok {
		return cached.(map[string]int)
	}
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = i
	}
	patchable.Store(t, fields)
	return fields
}

// mergeFields copies the named fields from src into dst and returns the
// names it applied, sorted. Unknown and store-owned names are ignored.
func mergeFields[T any](dst, src *T, names []string) []string {
	dv := reflect.ValueOf(dst).Elem()
	if dv.Kind() != reflect.Struct {
		return nil
	}
	sv := reflect.ValueOf(src).Elem()
	index := patchableFields(dv.Type())

	applied := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		i, ok := index[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		dv.Field(i).Set(sv.Field(i))
		applied = append(applied, name)
	}
	sort.Strings(applied)
	return applied
}
