// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package satshtest provides a small test helper for producing a
// human-readable diff between two values of the same type, trimmed
// down from the general-purpose reflect-based differ elsewhere in the
// codebase to the handful of kinds this module's tests actually
// compare: structs, slices, and maps of plain values.
package satshtest

import (
	"fmt"
	"reflect"
)

// Diff returns a human-readable description of how a and b differ, or
// the empty string if they're deeply equal. It isn't exhaustive —
// unlike a general-purpose differ it doesn't special-case every
// reflect.Kind, only the ones MS-SatShield's own result types use.
func Diff(a, b interface{}) string {
	if reflect.DeepEqual(a, b) {
		return ""
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return fmt.Sprintf("types differ: %T vs %T", a, b)
	}

	switch av.Kind() {
	case reflect.Map:
		return diffMap(av, bv)
	case reflect.Slice, reflect.Array:
		return diffSlice(av, bv)
	case reflect.Struct:
		return diffStruct(av, bv)
	default:
		return fmt.Sprintf("%v != %v", a, b)
	}
}

func diffMap(av, bv reflect.Value) string {
	if av.Len() != bv.Len() {
		return fmt.Sprintf("map lengths differ: %d vs %d", av.Len(), bv.Len())
	}
	iter := av.MapRange()
	for iter.Next() {
		k, want := iter.Key(), iter.Value()
		got := bv.MapIndex(k)
		if !got.IsValid() {
			return fmt.Sprintf("key %v missing from second map", k)
		}
		if !reflect.DeepEqual(want.Interface(), got.Interface()) {
			return fmt.Sprintf("key %v: %v != %v", k, want, got)
		}
	}
	return ""
}

func diffSlice(av, bv reflect.Value) string {
	if av.Len() != bv.Len() {
		return fmt.Sprintf("slice lengths differ: %d vs %d", av.Len(), bv.Len())
	}
	for i := 0; i < av.Len(); i++ {
		if d := Diff(av.Index(i).Interface(), bv.Index(i).Interface()); d != "" {
			return fmt.Sprintf("index %d: %s", i, d)
		}
	}
	return ""
}

func diffStruct(av, bv reflect.Value) string {
	t := av.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		if d := Diff(av.Field(i).Interface(), bv.Field(i).Interface()); d != "" {
			return fmt.Sprintf("field %s: %s", field.Name, d)
		}
	}
	return ""
}
