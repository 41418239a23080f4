package guest

import "strings"

// TranslateHostPath converts a host filesystem path into the form the guest
// sees. Windows drive-letter paths map onto WSL's drvfs mount convention
// (C:\Users\x -> /mnt/c/Users/x). Paths that are already guest-native pass
// through unchanged, which makes the translation a no-op on Unix hosts.
func TranslateHostPath(hostPath string) string {
	if len(hostPath) < 2 || hostPath[1] != ':' || !isDriveLetter(hostPath[0]) {
		return hostPath
	}
	drive := strings.ToLower(hostPath[:1])
	rest := strings.ReplaceAll(hostPath[2:], `\`, "/")
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "/mnt/" + drive
	}
	return "/mnt/" + drive + "/" + rest
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
