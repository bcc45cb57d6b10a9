//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package platform

func hostSysname() string {
	return ""
}
