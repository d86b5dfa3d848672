//go:build windows

package rules

import (
	"fmt"

	winsys "golang.org/x/sys/windows"
)

func osVersion() string {
	v := winsys.RtlGetVersion()
	return fmt.Sprintf("%d.%d", v.MajorVersion, v.MinorVersion)
}
