package version

// Version and Revision are set at build time via -ldflags.
var (
	Version  = "dev"
	Revision = "HEAD"
)

// Signature is the server identity tag embedded in generated listings.
func Signature() string {
	return "gemini-pages/" + Version
}
