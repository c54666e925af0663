//go:build !windows

package access

type nativeDescriptor struct{}

// convertNative has nothing to convert off Windows: the socket mode computed by
// Policy.SocketMode is the native form.
func convertNative(string) (nativeDescriptor, error) {
	return nativeDescriptor{}, nil
}
