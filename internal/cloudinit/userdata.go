package cloudinit

import (
	"fmt"
	"os"
	"strings"
)

// portPlaceholder is the token in the user data template that is replaced
// with the WireGuard listen port.
const portPlaceholder = "WG_PORT"

// RenderUserData reads the cloud-init template at path and substitutes every
// occurrence of the WG_PORT placeholder with port. The result is sent to the
// provider verbatim as the droplet's user data.
func RenderUserData(path, port string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read user data template: %w", err)
	}
	return strings.ReplaceAll(string(data), portPlaceholder, port), nil
}
