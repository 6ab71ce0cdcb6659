package main

import (
	"os"
	"strings"

	"wishlist-cli/internal/cli"
)

// Persistent flags that take a separate value token.
var valueFlags = map[string]bool{
	"--dir":    true,
	"--actor":  true,
	"--format": true,
	"--config": true,
}

func isItemID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "item-") && len(s) > len("item-")
}

// firstPositional returns the index of the first non-flag token in argv[1:], or -1.
func firstPositional(argv []string) int {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) {
				return i + 1
			}
			return -1
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
		default:
			return i
		}
	}
	return -1
}

// rewriteItemShortcut turns `wishlist [flags] <item-id>` into `wishlist [flags] items show <item-id>`.
func rewriteItemShortcut(argv []string) []string {
	i := firstPositional(argv)
	if i < 0 || !isItemID(argv[i]) {
		return argv
	}
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:i]...)
	out = append(out, "items", "show")
	return append(out, argv[i:]...)
}

func main() {
	os.Args = rewriteItemShortcut(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
