//go:build !unix && !windows

package provider

import "github.com/Guliveer/devicescope/internal/platform"

func kernelVersion() (string, error) { return "", platform.ErrUnsupported }
