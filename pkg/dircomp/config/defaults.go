package config

// Default configuration values for dircomp.
const (
	// DefaultFilter is the display filter applied at startup.
	DefaultFilter = "all"

	// DefaultSmallFileMax is the full byte-compare ceiling.
	DefaultSmallFileMax = "4KiB"

	// DefaultHashFileMax is the digest-compare ceiling.
	DefaultHashFileMax = "1MiB"

	// DefaultPrefixBytes is the head length compared for large files.
	DefaultPrefixBytes = "4KiB"
)

// DefaultExclusions contains relative path patterns skipped during
// scanning by default.
var DefaultExclusions = []string{
	".git",
	".git/**",
}
