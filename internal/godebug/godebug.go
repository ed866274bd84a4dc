// Copyright 2021 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package godebug reads settings from the $GODEBUG environment variable,
// such as GODEBUG=flatedebug=1.
package godebug

import (
	"os"
	"strings"
)

// Get returns the value of key in $GODEBUG, or "" if it is not set.
// When a key is repeated the last setting wins.
// Anything after a '#' in a value is ignored.
func Get(key string) string {
	return lookup(os.Getenv("GODEBUG"), key)
}

// Enabled reports whether key is set to a value other than "" or "0".
func Enabled(key string) bool {
	v := Get(key)
	return v != "" && v != "0"
}

func lookup(env, key string) string {
	val := ""
	for _, kv := range strings.Split(env, ",") {
		name, arg, ok := strings.Cut(kv, "=")
		if !ok || name != key {
			continue
		}
		if i := strings.IndexByte(arg, '#'); i >= 0 {
			arg = arg[:i]
		}
		val = arg
	}
	return val
}
