//go:build !unix && !windows

package rules

func osVersion() string {
	return ""
}
