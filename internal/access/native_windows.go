//go:build windows

package access

import (
	"errors"

	"golang.org/x/sys/windows"
)

type nativeDescriptor = *windows.SECURITY_DESCRIPTOR

func convertNative(sddl string) (nativeDescriptor, error) {
	sd, err := windows.SecurityDescriptorFromString(sddl)
	if err != nil {
		return nil, err
	}
	if !sd.IsValid() {
		return nil, errors.New("security descriptor failed validation")
	}
	return sd, nil
}
