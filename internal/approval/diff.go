// Package approval turns entity mutations into change requests and applies
// reviewer decisions back onto the live rows.
package approval

import (
	"reflect"
	"time"

	"github.com/baharkarakas/approval-backend/internal/models"
)

// control fields travel with a submission but are never part of a diff
var controlFields = map[string]struct{}{
	"requestedBy": {},
	"entityKind":  {},
	"entityName":  {},
	"actionType":  {},
}

// Diff returns the fields that differ between old and new. A differing key
// lands on a side only if that side carries it, so a create (empty old)
// yields only a new side and a delete (empty new) only an old side.
func Diff(old, new models.Fields) models.Changes {
	out := models.Changes{Old: models.Fields{}, New: models.Fields{}}
	for k := range keys(old, new) {
		if _, skip := controlFields[k]; skip {
			continue
		}
		ov, inOld := old[k]
		nv, inNew := new[k]
		if SameValue(ov, nv) {
			continue
		}
		if inOld {
			out.Old[k] = ov
		}
		if inNew {
			out.New[k] = nv
		}
	}
	return out
}

// DiffMulti diffs a composite entity table by table. A table appears on a
// side only when it has at least one differing field there.
func DiffMulti(old, new map[string]models.Fields) models.Changes {
	out := models.Changes{Old: models.Fields{}, New: models.Fields{}}
	tables := make(map[string]struct{}, len(old)+len(new))
	for t := range old {
		tables[t] = struct{}{}
	}
	for t := range new {
		tables[t] = struct{}{}
	}
	for t := range tables {
		d := Diff(old[t], new[t])
		if len(d.Old) > 0 {
			out.Old[t] = d.Old
		}
		if len(d.New) > 0 {
			out.New[t] = d.New
		}
	}
	return out
}

func keys(a, b models.Fields) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// IsNoValue reports whether v stands for "no value": nil, or a typed nil
// pointer.
func IsNoValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// SameValue is the equality used by Diff. Pointers are compared by what
// they point at and numbers by value across numeric types. Maps and slices
// are never equal.
func SameValue(a, b any) bool {
	an, bn := IsNoValue(a), IsNoValue(b)
	if an || bn {
		return an && bn
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.Pointer {
		ra = ra.Elem()
	}
	if rb.Kind() == reflect.Pointer {
		rb = rb.Elem()
	}
	if ta, ok := ra.Interface().(time.Time); ok {
		tb, ok := rb.Interface().(time.Time)
		return ok && ta.Equal(tb)
	}
	if isNumber(ra) && isNumber(rb) {
		return sameNumber(ra, rb)
	}
	if !ra.Comparable() || !rb.Comparable() {
		return false
	}
	if ra.Type() != rb.Type() {
		return false
	}
	return ra.Equal(rb)
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func sameNumber(a, b reflect.Value) bool {
	if isFloat(a) || isFloat(b) {
		return asFloat(a) == asFloat(b)
	}
	switch {
	case isUnsigned(a) && isUnsigned(b):
		return a.Uint() == b.Uint()
	case isUnsigned(a):
		return b.Int() >= 0 && uint64(b.Int()) == a.Uint()
	case isUnsigned(b):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	}
	return a.Int() == b.Int()
}

func asFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isUnsigned(v):
		return float64(v.Uint())
	}
	return float64(v.Int())
}
