package util

import (
	"fmt"
	"runtime"
	"strings"
)

// GetTrace produces the string representation of a stack trace
func GetTrace() string {
	var name, file string
	var line int
	var pc [16]uintptr
	var res strings.Builder
	n := runtime.Callers(3, pc[:])
	for _, pc := range pc[:n] {
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line = fn.FileLine(pc)
		name = fn.Name()
		if !strings.HasPrefix(name, "runtime.") {
			fmt.Fprintf(&res, "%s\n\t%s:%d\n", name, file, line)
		}
	}
	return res.String()
}

// FormatMultiError formats multierrors for logging
func FormatMultiError(merrs []error) string {
	var msg strings.Builder
	for i := 0; i < len(merrs); i++ {
		fmt.Fprintf(&msg, "%+v\n", merrs[i])
	}
	return msg.String()
}

// PartitionDatasetName builds the workspace name of a partition dataset from a prefix and a partition id
func PartitionDatasetName(prefix string, id int) string {
	return fmt.Sprintf("%s%d", prefix, id)
}
