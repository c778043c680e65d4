package toolchain

import (
	"os"
	"runtime"
	"strings"
)

// RunEnv returns base with the toolchain's bin directory prepended to PATH.
// With cross set, TARGET_CC and TARGET_AR select the toolchain's compiler
// and archiver for build scripts.
func RunEnv(tc *InstalledToolchain, base []string, cross bool) []string {
	env := make([]string, 0, len(base)+3)
	found := false
	for _, kv := range base {
		key, val, _ := strings.Cut(kv, "=")
		if isPathKey(key) && !found {
			found = true
			env = append(env, key+"="+tc.HostBinDir()+string(os.PathListSeparator)+val)
			continue
		}
		if cross && (key == "TARGET_CC" || key == "TARGET_AR") {
			continue
		}
		env = append(env, kv)
	}
	if !found {
		env = append(env, "PATH="+tc.HostBinDir())
	}
	if cross {
		env = append(env, "TARGET_CC=clang", "TARGET_AR=llvm-ar")
	}
	return env
}

func isPathKey(key string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(key, "PATH")
	}
	return key == "PATH"
}
