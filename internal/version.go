package internal

import "fmt"

var (
	Version string
	Commit  string
)

func PrintableVersion() string {
	return fmt.Sprintf("meloserve %s (%s)", Version, Commit)
}
