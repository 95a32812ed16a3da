//go:build windows

package provider

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func kernelVersion() (string, error) {
	v := windows.RtlGetVersion()
	return fmt.Sprintf("Windows NT %d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber), nil
}
