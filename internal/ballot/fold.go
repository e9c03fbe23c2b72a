package ballot

import "golang.org/x/text/cases"

// Casers are stateful, so each call gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}
